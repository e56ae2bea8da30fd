package auth

import (
	"context"

	"github.com/abira1/Academy-Management-System/internal/models"
)

// Authenticator defines the interface for login implementations.
// This abstraction allows swapping the credential source (configured staff
// accounts, partner records, an external directory) without changing the
// service layer code.
type Authenticator interface {
	// Authenticate verifies the username and credential and returns the
	// session they open. Returns ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, username, credential string) (models.Session, error)
}

// PartnerDirectory is the read side of the partner records used for login.
type PartnerDirectory interface {
	Snapshot() []models.Partner
}
