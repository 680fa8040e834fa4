package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/config"
	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/events"
	"github.com/spec-kit/article-platform/internal/repository"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// ErrRefreshExpired signals that a refresh token is past its expiry. The
// handler clears the cookie in this case before asking the client to sign
// in again.
var ErrRefreshExpired = errors.New("refresh token expired")

// Session describes an established or renewed session. RefreshToken is
// empty when the operation did not mint a new refresh token.
type Session struct {
	UserID           string
	Role             domain.Role
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService orchestrates the session-token lifecycle: registration,
// login, refresh and logout over the issuer, verifier and revocation
// ledger.
type AuthService struct {
	users         repository.UserRepository
	ledger        repository.RevokedTokenRepository
	access        *auth.TokenManager
	refresh       *auth.TokenManager
	dispatcher    events.Dispatcher
	bcryptCost    int
	rotateRefresh bool
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Ledger     repository.RevokedTokenRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service. Access and refresh tokens get separate
// managers bound to their own key pairs.
func NewAuthService(cfg config.AuthConfig, keys *auth.KeyStore, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:         deps.UserRepo,
		ledger:        deps.Ledger,
		access:        auth.NewTokenManager(keys.Access, cfg.AccessTokenTTL()),
		refresh:       auth.NewTokenManager(keys.Refresh, cfg.RefreshTokenTTL()),
		dispatcher:    deps.Dispatcher,
		bcryptCost:    cfg.BcryptCost,
		rotateRefresh: cfg.RefreshRotation,
	}
}

// Register creates a new account and establishes a session immediately.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*Session, error) {
	email = strings.ToLower(email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("user already exists", map[string]any{"field": "email"})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		LastLogin:    &now,
	}
	user.Slugify()

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Role:  user.Role,
	})

	return s.issueSession(user.ID, user.Role)
}

// Login authenticates a credential pair. Unknown email and wrong password
// produce the identical error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, nil)

	return s.issueSession(user.ID, user.Role)
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is only replaced when rotation is enabled; the old
// token id is then revoked before the new session is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.refresh.Parse(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrRefreshExpired
		}
		return nil, apperrors.NewUnauthorized("could not validate credentials")
	}

	revoked, err := s.ledger.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.NewUnauthorized("could not validate credentials")
	}

	accessToken, _, err := s.access.Issue(claims.SubjectID, claims.Role)
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:      claims.SubjectID,
		Role:        claims.Role,
		AccessToken: accessToken,
	}

	if s.rotateRefresh {
		newRefresh, newClaims, err := s.refresh.Issue(claims.SubjectID, claims.Role)
		if err != nil {
			return nil, err
		}
		if err := s.revokeClaims(ctx, claims, domain.TokenKindRefresh); err != nil {
			return nil, err
		}
		session.RefreshToken = newRefresh
		session.RefreshExpiresAt = newClaims.ExpiresAt
	}

	return session, nil
}

// Logout revokes whichever of the two tokens are present and verifiable.
// A token that fails verification needs no revocation and is skipped, so
// logout never fails merely because a token already expired. Ledger writes
// are durable before this returns.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if claims, err := s.access.Parse(accessToken); err == nil {
			if err := s.revokeClaims(ctx, claims, domain.TokenKindAccess); err != nil {
				return err
			}
		}
	}

	if refreshToken != "" {
		if claims, err := s.refresh.Parse(refreshToken); err == nil {
			if err := s.revokeClaims(ctx, claims, domain.TokenKindRefresh); err != nil {
				return err
			}
		}
	}

	return nil
}

// AccessTokens exposes the access-token manager for middleware usage.
func (s *AuthService) AccessTokens() *auth.TokenManager {
	return s.access
}

// RefreshTTL returns the refresh token lifetime, used for cookie expiry.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.refresh.TTL()
}

func (s *AuthService) issueSession(userID string, role domain.Role) (*Session, error) {
	accessToken, _, err := s.access.Issue(userID, role)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshClaims, err := s.refresh.Issue(userID, role)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:           userID,
		Role:             role,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, nil
}

func (s *AuthService) revokeClaims(ctx context.Context, claims *domain.TokenClaims, kind domain.TokenKind) error {
	if err := s.ledger.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	s.publish(ctx, events.EventTokenRevoked, claims.SubjectID, events.TokenRevokedPayload{
		TokenID:   claims.TokenID,
		Kind:      kind,
		ExpiresAt: claims.ExpiresAt,
	})
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
