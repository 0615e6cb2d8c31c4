package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/model"
	"github.com/carhive/carhive/internal/repository"
)

type fakeUserResolver struct {
	users map[string]*model.User
	calls int
	err   error
}

func (f *fakeUserResolver) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeIdentityCache struct {
	identities map[string]*model.Identity
	sets       int
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{identities: make(map[string]*model.Identity)}
}

func (f *fakeIdentityCache) GetIdentity(ctx context.Context, userID string) (*model.Identity, error) {
	id, ok := f.identities[userID]
	if !ok {
		return nil, nil
	}
	return id, nil
}

func (f *fakeIdentityCache) SetIdentity(ctx context.Context, id *model.Identity) error {
	f.sets++
	f.identities[id.UserID] = id
	return nil
}

func newAuthTestConfig(users *fakeUserResolver, cache IdentityCache) (AuthConfig, *auth.Tokens) {
	tokens := auth.NewTokens("middleware-test-secret", time.Hour)
	return AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: tokens,
		Users:  users,
		Cache:  cache,
	}, tokens
}

func okHandler(gotIdentity **model.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotIdentity = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_RejectsMissingAndMalformedHeaders(t *testing.T) {
	users := &fakeUserResolver{users: map[string]*model.User{}}
	cfg, _ := newAuthTestConfig(users, nil)

	var identity *model.Identity
	handler := Auth(cfg)(okHandler(&identity))

	tests := []struct {
		name   string
		header string
	}{
		{"no_header", ""},
		{"no_bearer_prefix", "Token abc123"},
		{"basic_auth", "Basic dXNlcjpwYXNz"},
		{"bare_token", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuth_RejectsInvalidToken(t *testing.T) {
	users := &fakeUserResolver{users: map[string]*model.User{}}
	cfg, _ := newAuthTestConfig(users, nil)

	var identity *model.Identity
	handler := Auth(cfg)(okHandler(&identity))

	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if identity != nil {
		t.Error("handler should not run for invalid token")
	}
}

func TestAuth_RejectsUnknownUser(t *testing.T) {
	users := &fakeUserResolver{users: map[string]*model.User{}}
	cfg, tokens := newAuthTestConfig(users, nil)

	token, err := tokens.Issue("deleted-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var identity *model.Identity
	handler := Auth(cfg)(okHandler(&identity))

	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InjectsIdentity(t *testing.T) {
	users := &fakeUserResolver{users: map[string]*model.User{
		"user-1": {ID: "user-1", Name: "Alice", Email: "alice@example.com"},
	}}
	cache := newFakeIdentityCache()
	cfg, tokens := newAuthTestConfig(users, cache)

	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var identity *model.Identity
	handler := Auth(cfg)(okHandler(&identity))

	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if identity == nil {
		t.Fatal("expected identity in request context")
	}
	if identity.UserID != "user-1" {
		t.Errorf("identity user ID = %q, want %q", identity.UserID, "user-1")
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("identity email = %q, want %q", identity.Email, "alice@example.com")
	}
	if cache.sets != 1 {
		t.Errorf("cache backfills = %d, want 1", cache.sets)
	}
}

func TestAuth_CacheHitSkipsDatabase(t *testing.T) {
	users := &fakeUserResolver{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "alice@example.com"},
	}}
	cache := newFakeIdentityCache()
	cache.identities["user-1"] = &model.Identity{UserID: "user-1", Email: "alice@example.com"}
	cfg, tokens := newAuthTestConfig(users, cache)

	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var identity *model.Identity
	handler := Auth(cfg)(okHandler(&identity))

	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if users.calls != 0 {
		t.Errorf("database lookups = %d, want 0 on cache hit", users.calls)
	}
}
