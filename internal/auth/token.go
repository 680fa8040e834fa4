package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/article-platform/internal/domain"
)

// ErrTokenExpired marks a structurally valid token past its expiry. The
// session layer needs the distinction to clear stale refresh cookies;
// clients only ever see a generic credentials failure.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid covers every other verification failure: malformed token,
// bad signature, wrong algorithm, missing claims.
var ErrTokenInvalid = errors.New("invalid token")

// Claims describes the signed JWT payload.
type Claims struct {
	SubjectID string      `json:"id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies RS256 tokens under a single key pair.
// Two managers exist per process, one per token kind, each bound to its own
// keys and TTL. Verification does not consult the revocation ledger; that
// is the caller's responsibility.
type TokenManager struct {
	keys KeyPair
	ttl  time.Duration
}

// NewTokenManager builds a manager for one token kind.
func NewTokenManager(keys KeyPair, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenManager{keys: keys, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for the subject. Each token carries a
// fresh 32-byte random hex token id.
func (tm *TokenManager) Issue(subjectID string, role domain.Role) (string, *domain.TokenClaims, error) {
	jti, err := newTokenID()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(tm.keys.Private)
	if err != nil {
		return "", nil, err
	}

	return signed, &domain.TokenClaims{
		SubjectID: subjectID,
		Role:      role,
		TokenID:   jti,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse verifies signature, algorithm and expiry, and extracts the claims.
func (tm *TokenManager) Parse(tokenStr string) (*domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, ErrTokenInvalid
		}
		return tm.keys.Public, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SubjectID == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	result := &domain.TokenClaims{
		SubjectID: claims.SubjectID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

func newTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
