package model

import "time"

// User represents a staff account as stored in the `users` table.
// The yard is operated by a small set of named users; Username is the
// login identifier and also the value denormalized into audit entries
// so the log stays readable if the account changes later.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Name         – optional display name.
//  Email        – optional contact address.
//  Role         – "user" or "admin".
//  LastSignedIn – timestamp of the most recent login.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password
	Name         *string   // users.name (nullable)
	Email        *string   // users.email (nullable)
	Role         string    // users.role
	LastSignedIn time.Time // users.lastSignedIn
	CreatedAt    time.Time // users.createdAt
	UpdatedAt    time.Time // users.updatedAt
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries expiry and revocation
// metadata. The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
