package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/config"
	"github.com/spec-kit/article-platform/internal/domain"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLogin = &now
	}
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Search(_ context.Context, emailQuery string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if strings.Contains(user.Email, emailQuery) {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{revoked: make(map[string]time.Time)}
}

func (l *fakeLedger) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.revoked[tokenID]; ok {
		return nil
	}
	l.revoked[tokenID] = expiresAt
	return nil
}

func (l *fakeLedger) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revoked[tokenID]
	return ok, nil
}

func (l *fakeLedger) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var deleted int64
	for id, expiresAt := range l.revoked {
		if expiresAt.Before(now) {
			delete(l.revoked, id)
			deleted++
		}
	}
	return deleted, nil
}

func testKeyStore(t *testing.T) *auth.KeyStore {
	t.Helper()
	accessKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	refreshKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return auth.NewKeyStoreFromKeys(accessKey, refreshKey)
}

func newTestAuthService(t *testing.T, rotate bool) (*AuthService, *fakeUserRepo, *fakeLedger, *auth.KeyStore) {
	t.Helper()
	users := newFakeUserRepo()
	ledger := newFakeLedger()
	keys := testKeyStore(t)
	cfg := config.AuthConfig{
		AccessTokenTTLMinutes:  1,
		RefreshTokenTTLMinutes: 2,
		BcryptCost:             bcrypt.MinCost,
		RefreshRotation:        rotate,
	}
	svc := NewAuthService(cfg, keys, AuthDependencies{UserRepo: users, Ledger: ledger})
	return svc, users, ledger, keys
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t, false)
	ctx := context.Background()

	session, err := svc.Register(ctx, "ada", "lovelace", "Ada@X.com", "p")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.Equal(t, domain.RoleUser, session.Role)

	// Email is lowercased, names are slugged.
	user, err := users.GetByID(ctx, session.UserID)
	require.NoError(t, err)
	require.Equal(t, "ada@x.com", user.Email)
	require.Equal(t, "Ada", user.FirstName)

	claims, err := svc.AccessTokens().Parse(session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.UserID, claims.SubjectID)
}

func TestRegisterConflict(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "c", "d", "a@x.com", "q")
	require.Error(t, err)
	require.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestLoginGenericFailure(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@x.com", "p")
	_, wrongErr := svc.Login(ctx, "a@x.com", "wrong")

	// Unknown user and wrong password are indistinguishable to the caller.
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	require.Equal(t, apperrors.ToDomainError(unknownErr).Code, apperrors.ToDomainError(wrongErr).Code)
	require.Equal(t, 400, apperrors.ToDomainError(wrongErr).HTTPStatus)
}

func TestLoginSuccess(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t, false)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "A@X.com", "p")
	require.NoError(t, err)
	require.Equal(t, registered.UserID, session.UserID)

	user, err := users.GetByID(ctx, session.UserID)
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	svc, _, ledger, _ := newTestAuthService(t, false)
	ctx := context.Background()

	session, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.AccessToken, session.RefreshToken))

	accessClaims, err := svc.AccessTokens().Parse(session.AccessToken)
	require.NoError(t, err)
	revoked, err := ledger.IsRevoked(ctx, accessClaims.TokenID)
	require.NoError(t, err)
	require.True(t, revoked)

	// The refresh token is now rejected even though it has not expired.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	require.Error(t, err)
	require.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)
}

func TestLogoutSkipsUnverifiableTokens(t *testing.T) {
	svc, _, ledger, _ := newTestAuthService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "garbage", ""))
	require.NoError(t, svc.Logout(ctx, "", ""))
	require.Empty(t, ledger.revoked)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, ledger, _ := newTestAuthService(t, false)
	ctx := context.Background()

	session, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.AccessToken, session.RefreshToken))
	require.NoError(t, svc.Logout(ctx, session.AccessToken, session.RefreshToken))
	require.Len(t, ledger.revoked, 2)
}

func TestRefreshIssuesAccessOnly(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, false)
	ctx := context.Background()

	session, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, renewed.AccessToken)
	require.Empty(t, renewed.RefreshToken)

	claims, err := svc.AccessTokens().Parse(renewed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.UserID, claims.SubjectID)
}

func TestRefreshExpired(t *testing.T) {
	svc, _, _, keys := newTestAuthService(t, false)
	ctx := context.Background()

	shortLived := auth.NewTokenManager(keys.Refresh, time.Millisecond)
	token, _, err := shortLived.Issue("user-1", domain.RoleUser)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.Refresh(ctx, token)
	require.ErrorIs(t, err, ErrRefreshExpired)
}

func TestRefreshInvalidToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t, false)

	_, err := svc.Refresh(context.Background(), "garbage")
	require.Error(t, err)
	require.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)
}

func TestRefreshRotation(t *testing.T) {
	svc, _, ledger, _ := newTestAuthService(t, true)
	ctx := context.Background()

	session, err := svc.Register(ctx, "a", "b", "a@x.com", "p")
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, renewed.RefreshToken)
	require.NotEqual(t, session.RefreshToken, renewed.RefreshToken)

	// The replaced refresh token is revoked and cannot be replayed.
	require.Len(t, ledger.revoked, 1)
	_, err = svc.Refresh(ctx, session.RefreshToken)
	require.Error(t, err)
	require.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)

	// The rotated token still works.
	_, err = svc.Refresh(ctx, renewed.RefreshToken)
	require.NoError(t, err)
}

func TestLedgerRevokeIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, ledger.Revoke(ctx, "x", expires))
	require.NoError(t, ledger.Revoke(ctx, "x", expires))

	revoked, err := ledger.IsRevoked(ctx, "x")
	require.NoError(t, err)
	require.True(t, revoked)
}
