package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/abira1/Academy-Management-System/internal/auth"
	"github.com/abira1/Academy-Management-System/internal/middleware"
	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/models"
	"github.com/abira1/Academy-Management-System/internal/storage"
)

var (
	errPermissionDenied = errors.New("not allowed for this role")
	errMissingID        = errors.New("id is required")
)

// toConnectError maps ledger errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}

	var verr *models.ValidationError
	var werr *mirror.WriteError
	var terr *storage.TransportError
	switch {
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &werr), errors.As(err, &terr):
		return connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// authorize returns the caller's session if its role is one of roles.
func authorize(ctx context.Context, roles ...models.Role) (models.Session, error) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		return models.Session{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	for _, r := range roles {
		if session.Role == r {
			return session, nil
		}
	}
	return session, connect.NewError(connect.CodePermissionDenied, errPermissionDenied)
}
