package domain

import "time"

// TokenKind differentiates the two signing key pairs.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the verified payload extracted from a signed token.
type TokenClaims struct {
	SubjectID string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevokedToken is a ledger record for a token id invalidated before its
// natural expiry. Records are append-only; ExpiresAt mirrors the original
// token expiry so stale records can be pruned safely.
type RevokedToken struct {
	TokenID   string
	ExpiresAt time.Time
	RevokedAt time.Time
}
