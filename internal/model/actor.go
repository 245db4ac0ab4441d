package model

import "time"

// Actor roles.  ADMIN is the production company staff and may do
// everything; CLIENT is a contracting party that requests and pays for
// shows; MEMBER is a performer assignable to shows.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
	RoleMember = "MEMBER"
)

// ActorProfile represents an authenticated actor as stored in the
// `actor_profiles` table.  Profiles are created lazily with the default
// CLIENT role on first sign-up; an admin promotes members and other
// admins afterwards.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  DisplayName  – name shown on rosters and contracts.
//  Role         – ADMIN, CLIENT or MEMBER.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type ActorProfile struct {
	ID           uint64    // actor_profiles.id
	Email        string    // actor_profiles.email
	PasswordHash string    // actor_profiles.password_hash
	DisplayName  string    // actor_profiles.display_name
	Role         string    // actor_profiles.role
	IsActive     bool      // actor_profiles.is_active
	CreatedAt    time.Time // actor_profiles.created_at
	UpdatedAt    time.Time // actor_profiles.updated_at
}

// KnownRole reports whether r is one of the defined actor roles.
func KnownRole(r string) bool {
	return r == RoleAdmin || r == RoleClient || r == RoleMember
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to an actor and carries metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  ActorID   – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	ActorID   uint64     // refresh_tokens.actor_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
