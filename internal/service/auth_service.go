package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/abira1/Academy-Management-System/internal/auth"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Handler returns the service's path prefix and HTTP handler. Login must be
// reachable without a token, so no auth interceptor belongs in opts.
func (s *AuthService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AuthLoginProcedure, connect.NewUnaryHandler(AuthLoginProcedure, s.Login, withCodec(opts)...))
	return "/" + AuthServiceName + "/", mux
}

// Login authenticates a staff member or partner and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if req.Msg.Username == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	session, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, expires, err := s.jwtManager.Generate(session)
	if err != nil {
		s.logger.Error("Failed to generate token", "username", session.Username, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "username", session.Username, "role", session.Role)
	return connect.NewResponse(&LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  session.Username,
		Role:      session.Role,
		PartnerID: session.PartnerID,
	}), nil
}

// withCodec prepends the JSON codec to opts.
func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	out := make([]connect.HandlerOption, 0, len(opts)+1)
	out = append(out, connect.WithCodec(JSONCodec{}))
	return append(out, opts...)
}
