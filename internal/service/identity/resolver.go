// Package identity resolves the caller identity for each request: it
// extracts the bearer credential, verifies it against the identity
// provider, and attaches the local profile, falling back to the token
// claims when the profile has not replicated yet.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/cache"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
	"github.com/taskhive/taskhive-api/internal/redact"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// ErrUnauthenticated is returned when a request requires a verified
// identity and none could be established.
var ErrUnauthenticated = errors.New("authentication required")

// Resolver turns an incoming request into an AuthContext.
type Resolver struct {
	verifier auth.TokenVerifier
	users    store.UserStore
	profiles *cache.Cache[uuid.UUID, domain.Identity]
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver creates a Resolver. The profile cache TTL and the
// verification timeout come from the auth configuration.
func NewResolver(
	verifier auth.TokenVerifier,
	users store.UserStore,
	cfg config.AuthConfig,
	log *slog.Logger,
) *Resolver {
	if log == nil {
		log = slog.Default()
	}

	return &Resolver{
		verifier: verifier,
		users:    users,
		profiles: cache.New[uuid.UUID, domain.Identity](cfg.ProfileCacheTTL),
		timeout:  cfg.VerifyTimeout,
		logger:   log.With(slog.String("component", "identity_resolver")),
	}
}

// ExtractBearerToken pulls the credential out of an Authorization header of
// the form "Bearer <token>". Missing or malformed headers report no
// credential rather than an error; the caller decides whether that matters.
func ExtractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// Resolve produces the AuthContext for the request. With required=false a
// missing credential yields an anonymous context and no error; with
// required=true it fails with ErrUnauthenticated. An invalid or expired
// credential always fails, even when auth is optional: a caller presenting
// a bad token should hear about it rather than be silently downgraded.
func (res *Resolver) Resolve(ctx context.Context, r *http.Request, required bool) (*domain.AuthContext, error) {
	log := logger.FromContextOrDefault(ctx, res.logger)

	token, ok := ExtractBearerToken(r)
	if !ok {
		if !required {
			return domain.Anonymous(), nil
		}
		return nil, ErrUnauthenticated
	}

	// The one external call this resolver makes; bound it and propagate
	// cancellation from the inbound request.
	verifyCtx, cancel := context.WithTimeout(ctx, res.timeout)
	defer cancel()

	claims, err := res.verifier.VerifyToken(verifyCtx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrExpiredToken),
			errors.Is(err, auth.ErrMissingToken):
			return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
		default:
			// Provider outages and timeouts are server-side failures,
			// not the caller's fault. No local retries.
			log.Error("token verification failed", slog.String("error", redact.Error(err)))
			return nil, fmt.Errorf("identity provider error: %w", err)
		}
	}

	ident, err := res.lookupProfile(verifyCtx, claims)
	if err != nil {
		return nil, err
	}

	return domain.Authenticated(ident.ID, ident.Email, ident.Role), nil
}

// lookupProfile reads the caller's local profile through the TTL cache. A
// profile missing from the store is tolerated: the identity provider may
// know about a user before the profile row lands, so a minimal identity is
// synthesized from the token claims.
func (res *Resolver) lookupProfile(ctx context.Context, claims *auth.TokenClaims) (domain.Identity, error) {
	if ident, ok := res.profiles.Get(claims.UserID); ok {
		return ident, nil
	}

	log := logger.FromContextOrDefault(ctx, res.logger)

	user, err := res.users.GetByID(ctx, claims.UserID)
	switch {
	case err == nil:
		ident := domain.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
		res.profiles.Set(claims.UserID, ident)
		return ident, nil

	case store.IsNotFoundError(err):
		log.Debug("no local profile for verified identity, synthesizing from claims",
			slog.String("user_id", claims.UserID.String()))
		ident := domain.Identity{ID: claims.UserID, Email: claims.Email, Role: domain.RoleUser}
		res.profiles.Set(claims.UserID, ident)
		return ident, nil

	default:
		log.Error("profile lookup failed", slog.String("error", redact.Error(err)))
		return domain.Identity{}, fmt.Errorf("database error loading profile: %w", err)
	}
}

// Invalidate drops the cached profile for a user. Call after role changes
// or profile updates so subsequent requests see fresh data.
func (res *Resolver) Invalidate(userID uuid.UUID) {
	res.profiles.Delete(userID)
}
