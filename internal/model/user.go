package model

import "time"

// User represents a row in the `users` table. Emails are normalized to
// lowercase at registration and unique in the database. PasswordHash holds
// the bcrypt digest and must never be serialized into API responses;
// handlers build their own response types with only the public fields.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique lowercase email address.
//  PasswordHash – bcrypt hash of the password.
//  Balance      – prepaid balance available for orders.
//  Role         – access tier (User or Admin).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Balance      float64   // users.balance
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table. There is at
// most one row per (user, device) pair; a repeat login or a refresh from the
// same device overwrites the secret and expiry in place. Only the SHA-256
// digest of the secret is stored; the raw value travels back to the client
// once and is never persisted.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the token; rows cascade-delete with the user.
//  TokenHash  – SHA-256 hex digest of the opaque secret.
//  DeviceInfo – coarse device key (raw User-Agent of the issuing request).
//  ExpiresAt  – absolute expiry of the secret.
type RefreshToken struct {
	ID         uint64    // refresh_tokens.id
	UserID     uint64    // refresh_tokens.user_id
	TokenHash  string    // refresh_tokens.token_hash
	DeviceInfo string    // refresh_tokens.device_info
	ExpiresAt  time.Time // refresh_tokens.expires_at
}
