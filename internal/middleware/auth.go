package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/model"
	"github.com/carhive/carhive/internal/repository"
)

// UserResolver resolves a verified token subject to a live account.
// *repository.Repository implements it.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// IdentityCache is the optional Redis-backed identity cache.
// *cache.Cache implements it.
type IdentityCache interface {
	GetIdentity(ctx context.Context, userID string) (*model.Identity, error)
	SetIdentity(ctx context.Context, id *model.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.Tokens
	Users  UserResolver
	Cache  IdentityCache
}

// Auth returns a middleware that authenticates API requests.
// It extracts the bearer token from the Authorization header, verifies
// its signature and expiry, resolves the subject to a live user, and
// injects the identity into the request context. All failures produce
// the same 401 body so callers cannot probe for valid tokens.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			userID, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			identity, cacheHit := resolveIdentity(r.Context(), cfg, userID)
			if identity == nil {
				// Valid token for an account that no longer exists.
				logAuthFailure(cfg.Logger, r, "unknown_user")
				writeAuthError(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", identity.UserID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentity looks up the user behind a verified token, going
// through the identity cache when one is configured.
func resolveIdentity(ctx context.Context, cfg AuthConfig, userID string) (*model.Identity, bool) {
	if cfg.Cache != nil {
		if identity, err := cfg.Cache.GetIdentity(ctx, userID); err == nil && identity != nil {
			return identity, true
		}
	}

	user, err := cfg.Users.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			cfg.Logger.Error("database error during auth",
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	identity := &model.Identity{
		UserID: user.ID,
		Email:  user.Email,
	}

	if cfg.Cache != nil {
		_ = cfg.Cache.SetIdentity(ctx, identity)
	}

	return identity, false
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing bearer token","code":"UNAUTHORIZED"}`))
}
