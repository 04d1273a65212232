package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleCandidate Role = "candidate"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRecruiter, RoleCandidate:
		return true
	}
	return false
}

// ExternalRef links an account to one identity at an external provider.
// Unique per provider when present.
type ExternalRef struct {
	Provider string `bson:"provider" json:"provider"`
	Subject  string `bson:"subject" json:"subject"`
}

// Account is one local identity. It always carries at least one
// authentication method: a password hash, an external reference, or both.
type Account struct {
	ID              string       `bson:"_id" json:"id"`
	Email           string       `bson:"email" json:"email"`
	Name            string       `bson:"name" json:"name"`
	PasswordHash    *string      `bson:"password_hash,omitempty" json:"-"`
	External        *ExternalRef `bson:"external,omitempty" json:"external,omitempty"`
	Role            Role         `bson:"role" json:"role"`
	AvatarURL       string       `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	IsEmailVerified bool         `bson:"is_email_verified" json:"is_email_verified"`
	LastLoginAt     time.Time    `bson:"last_login_at" json:"last_login_at"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}

// HasPassword reports whether password login is possible for this account.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// LinkedTo reports whether the account is linked to the given provider
// identity.
func (a *Account) LinkedTo(provider, subject string) bool {
	return a.External != nil && a.External.Provider == provider && a.External.Subject == subject
}

// ExternalClaim is the normalized identity assertion returned by a provider
// during an OAuth callback. It is consumed once by account resolution and
// never persisted as its own record.
type ExternalClaim struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}

// LoginUpdate carries the per-login mutations applied to an account record:
// the last-login timestamp always, provider linkage and profile refreshes
// when an OAuth claim supplied them.
type LoginUpdate struct {
	LastLoginAt   time.Time
	External      *ExternalRef // non-nil links the reference onto the account
	AvatarURL     string       // empty means leave as is
	EmailVerified *bool        // nil means leave as is
}
