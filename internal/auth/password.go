package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abira1/Academy-Management-System/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// Hasher hashes passwords with bcrypt.
type Hasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// StaffAccount is a configured admin or reception login.
type StaffAccount struct {
	Username     string
	Role         models.Role
	PasswordHash string
}

// NewStaffAccount hashes password and returns the account.
func NewStaffAccount(username string, role models.Role, password string, h Hasher) (StaffAccount, error) {
	if !role.Valid() || role == models.RolePartner {
		return StaffAccount{}, fmt.Errorf("invalid staff role %q", role)
	}
	hash, err := h.Hash(password)
	if err != nil {
		return StaffAccount{}, fmt.Errorf("staff account %s: %w", username, err)
	}
	return StaffAccount{Username: strings.TrimSpace(username), Role: role, PasswordHash: hash}, nil
}

// PasswordAuthenticator checks staff accounts first and then partners.
type PasswordAuthenticator struct {
	staff    []StaffAccount
	partners PartnerDirectory
}

// NewPasswordAuthenticator creates a password-based authenticator.
// partners may be nil when only staff can log in.
func NewPasswordAuthenticator(staff []StaffAccount, partners PartnerDirectory) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		staff:    staff,
		partners: partners,
	}
}

// Authenticate verifies the username and password. Usernames match ignoring
// case and surrounding spaces.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (models.Session, error) {
	if strings.TrimSpace(username) == "" || credential == "" {
		return models.Session{}, ErrInvalidCredentials
	}

	for _, acct := range a.staff {
		if !models.SameUsername(acct.Username, username) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(credential)); err != nil {
			return models.Session{}, ErrInvalidCredentials
		}
		return models.Session{Username: acct.Username, Role: acct.Role}, nil
	}

	if a.partners == nil {
		return models.Session{}, ErrInvalidCredentials
	}
	for _, p := range a.partners.Snapshot() {
		if !models.SameUsername(p.Username, username) {
			continue
		}
		if _, err := bcrypt.Cost([]byte(p.Password)); err != nil {
			slog.WarnContext(ctx, "partner credential is not a bcrypt hash, login refused",
				"partner_id", p.ID,
			)
			return models.Session{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(credential)); err != nil {
			return models.Session{}, ErrInvalidCredentials
		}
		return models.Session{Username: p.Username, Role: models.RolePartner, PartnerID: p.ID}, nil
	}

	return models.Session{}, ErrInvalidCredentials
}
