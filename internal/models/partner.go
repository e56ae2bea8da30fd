package models

import "strings"

// Partner represents a revenue-sharing partner. Partners log in with their
// username, which is unique ignoring case.
type Partner struct {
	// ID is the store-assigned identifier.
	ID string `json:"id"`

	// Username is the login key.
	Username string `json:"username" validate:"required"`

	// SharePercentage is the fraction of net profit owed to the partner (0-100).
	// Shares across partners are not required to sum to 100.
	SharePercentage float64 `json:"sharePercentage" validate:"gte=0,lte=100"`

	// Password holds the bcrypt hash once written. On add it carries the
	// plaintext until the write path hashes it.
	Password string `json:"password,omitempty"`
}

// PartnerPatch is a partial update of a Partner. A nil or empty Password
// leaves the stored credential unchanged.
type PartnerPatch struct {
	Username        *string  `json:"username,omitempty" validate:"omitempty,min=1"`
	SharePercentage *float64 `json:"sharePercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Password        *string  `json:"password,omitempty"`
}

// Redacted returns a copy of p without its credential.
func (p Partner) Redacted() Partner {
	p.Password = ""
	return p
}

// SameUsername reports whether two usernames collide under the
// case-insensitive uniqueness rule.
func SameUsername(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Apply returns a with the non-nil fields of p merged in. The credential is
// handled separately by the write path and is never merged here.
func (p PartnerPatch) Apply(a Partner) Partner {
	if p.Username != nil {
		a.Username = *p.Username
	}
	if p.SharePercentage != nil {
		a.SharePercentage = *p.SharePercentage
	}
	return a
}
