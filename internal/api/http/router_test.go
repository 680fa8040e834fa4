package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/article-platform/internal/api/http/handlers"
	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/config"
	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/observability"
	"github.com/spec-kit/article-platform/internal/repository"
	"github.com/spec-kit/article-platform/internal/service"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLogin = &now
	}
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
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

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(context.Background(), email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memUserRepo) Search(_ context.Context, emailQuery string) ([]domain.User, error) {
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

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type memLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (l *memLedger) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[tokenID] = expiresAt
	return nil
}

func (l *memLedger) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revoked[tokenID]
	return ok, nil
}

func (l *memLedger) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	accessKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	refreshKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := auth.NewKeyStoreFromKeys(accessKey, refreshKey)

	users := &memUserRepo{users: make(map[string]*domain.User)}
	ledger := &memLedger{revoked: make(map[string]time.Time)}

	authCfg := config.AuthConfig{
		AccessTokenTTLMinutes:  1,
		RefreshTokenTTLMinutes: 2,
		BcryptCost:             bcrypt.MinCost,
	}

	authService := service.NewAuthService(authCfg, keys, service.AuthDependencies{
		UserRepo: users,
		Ledger:   ledger,
	})
	userService := service.NewUserService(users, bcrypt.MinCost)
	articleService := service.NewArticleService(repository.NewArticleRepository(nil), nil)
	tagService := service.NewTagService(repository.NewTagRepository(nil))
	commentService := service.NewCommentService(repository.NewCommentRepository(nil), repository.NewArticleRepository(nil), nil)
	voteService := service.NewVoteService(repository.NewVoteRepository(nil), repository.NewArticleRepository(nil), nil)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authService, userService),
		Articles:       handlers.NewArticlesHandler(articleService),
		Tags:           handlers.NewTagsHandler(tagService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Votes:          handlers.NewVotesHandler(voteService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.AccessTokens(), ledger),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, modify func(*nethttp.Request)) *nethttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if modify != nil {
		modify(req)
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	return resp
}

func decodeAuthResponse(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func refreshCookie(resp *nethttp.Response) *nethttp.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "_rt" {
			return cookie
		}
	}
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	register := func(email string) *nethttp.Response {
		return doJSON(t, app, "POST", "/api/v1/user/register", map[string]string{
			"first_name": "ada",
			"last_name":  "lovelace",
			"email":      email,
			"password":   "p",
		}, nil)
	}

	// Register establishes a session: access token in body, refresh in cookie.
	resp := register("a@x.com")
	require.Equal(t, 201, resp.StatusCode)
	body := decodeAuthResponse(t, resp)
	require.NotEmpty(t, body["access_token"])
	require.Equal(t, "Bearer", body["auth_type"])
	require.Equal(t, "user", body["role"])

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, "/", cookie.Path)

	// Duplicate registration conflicts.
	resp = register("a@x.com")
	require.Equal(t, 409, resp.StatusCode)

	// Wrong password fails generically.
	resp = doJSON(t, app, "POST", "/api/v1/user/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	}, nil)
	require.Equal(t, 400, resp.StatusCode)

	// Correct login issues a fresh session.
	resp = doJSON(t, app, "POST", "/api/v1/user/login", map[string]string{
		"email": "a@x.com", "password": "p",
	}, nil)
	require.Equal(t, 201, resp.StatusCode)
	body = decodeAuthResponse(t, resp)
	accessToken := body["access_token"].(string)
	cookie = refreshCookie(resp)
	require.NotNil(t, cookie)

	withAuth := func(req *nethttp.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.AddCookie(cookie)
	}

	// The access token authenticates protected requests.
	resp = doJSON(t, app, "GET", "/api/v1/user/current_user", nil, withAuth)
	require.Equal(t, 200, resp.StatusCode)

	// A plain user is forbidden from admin routes, not unauthorized.
	resp = doJSON(t, app, "GET", "/api/v1/user/users", nil, withAuth)
	require.Equal(t, 403, resp.StatusCode)

	// Refresh mints a new access token from the cookie.
	resp = doJSON(t, app, "GET", "/api/v1/user/refresh", nil, func(req *nethttp.Request) {
		req.AddCookie(cookie)
	})
	require.Equal(t, 200, resp.StatusCode)

	// Logout revokes both tokens and clears the cookie.
	resp = doJSON(t, app, "POST", "/api/v1/user/logout", map[string]string{}, withAuth)
	require.Equal(t, 204, resp.StatusCode)
	cleared := refreshCookie(resp)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)

	// The still-unexpired access token now fails verification.
	resp = doJSON(t, app, "GET", "/api/v1/user/current_user", nil, withAuth)
	require.Equal(t, 401, resp.StatusCode)

	// The revoked refresh token cannot mint new access tokens.
	resp = doJSON(t, app, "GET", "/api/v1/user/refresh", nil, func(req *nethttp.Request) {
		req.AddCookie(cookie)
	})
	require.Equal(t, 401, resp.StatusCode)

	// Without a cookie, refresh signals sign-in.
	resp = doJSON(t, app, "GET", "/api/v1/user/refresh", nil, nil)
	require.Equal(t, 404, resp.StatusCode)
}

func TestUnauthenticatedAccess(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/v1/user/current_user", nil, nil)
	require.Equal(t, 401, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/v1/user/current_user", nil, func(req *nethttp.Request) {
		req.Header.Set("Authorization", "Bearer not-a-token")
	})
	require.Equal(t, 401, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/v1/user/current_user", nil, func(req *nethttp.Request) {
		req.Header.Set("Authorization", "Basic abc")
	})
	require.Equal(t, 401, resp.StatusCode)
}

func TestProfileUpdates(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/v1/user/register", map[string]string{
		"first_name": "ada", "last_name": "lovelace", "email": "a@x.com", "password": "p",
	}, nil)
	require.Equal(t, 201, resp.StatusCode)
	body := decodeAuthResponse(t, resp)
	accessToken := body["access_token"].(string)

	withAuth := func(req *nethttp.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	// Email update to an already-used address conflicts.
	resp = doJSON(t, app, "PATCH", "/api/v1/user/email/update", map[string]string{
		"email": "a@x.com",
	}, withAuth)
	require.Equal(t, 409, resp.StatusCode)

	resp = doJSON(t, app, "PATCH", "/api/v1/user/email/update", map[string]string{
		"email": "b@x.com",
	}, withAuth)
	require.Equal(t, 200, resp.StatusCode)

	// Password update requires the current password.
	resp = doJSON(t, app, "PATCH", "/api/v1/user/password/update", map[string]string{
		"old_password": "wrong", "new_password": "q",
	}, withAuth)
	require.Equal(t, 400, resp.StatusCode)

	resp = doJSON(t, app, "PATCH", "/api/v1/user/password/update", map[string]string{
		"old_password": "p", "new_password": "q",
	}, withAuth)
	require.Equal(t, 200, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/v1/user/login", map[string]string{
		"email": "b@x.com", "password": "q",
	}, nil)
	require.Equal(t, 201, resp.StatusCode)
}
