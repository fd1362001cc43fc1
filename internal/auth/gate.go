package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/httputil"
	"github.com/LVRodrigues/fpa-management/internal/logging"
)

const bearerPrefix = "Bearer "

// Claims are the token claims the gate consumes.
type Claims struct {
	Tenant string `json:"tenant"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Gate authenticates requests: it verifies the bearer token's signature and
// audience against the key cache and attaches the tenant-scoped Context.
type Gate struct {
	cache     *KeyCache
	endpoints []string
	audience  string
	logger    *logging.Logger
}

// NewGate creates a Gate. The key cache is populated lazily on the first
// request if it has not been prepared at startup.
func NewGate(cache *KeyCache, endpoints []string, audience string, logger *logging.Logger) *Gate {
	return &Gate{cache: cache, endpoints: endpoints, audience: audience, logger: logger}
}

// Require is the authentication middleware. Requests without a verifiable
// token never reach the next handler.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.cache.Ready() {
			if err := g.cache.Prepare(r.Context(), g.endpoints); err != nil {
				g.logger.WithContext(r.Context()).WithError(err).Error("Key cache preparation failed")
				g.respondError(w, r, err)
				return
			}
		}

		token := extractBearer(r)
		if token == "" {
			g.respondError(w, r, errors.Unauthorized("Missing or malformed Authorization header."))
			return
		}

		ident, err := g.verify(token)
		if err != nil {
			g.logger.WithContext(r.Context()).WithError(err).Warn("Token validation failed")
			g.respondError(w, r, err)
			return
		}

		ctx := WithContext(r.Context(), ident)
		ctx = logging.WithTraceID(ctx, logging.GetTraceID(r.Context()))

		g.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"user_id": ident.ID.String(),
			"tenant":  ident.Tenant.String(),
		}).Debug("Authentication successful")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verify walks the token through header decode, key resolution, signature and
// audience validation, and claim extraction.
func (g *Gate) verify(tokenString string) (Context, error) {
	claims := &Claims{}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"})}
	if g.audience != "" {
		options = append(options, jwt.WithAudience(g.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.InvalidToken(nil).WithDetails("reason", "missing kid header")
		}
		return g.cache.Lookup(kid)
	}, options...)
	if err != nil {
		if svcErr := errors.GetServiceError(err); svcErr != nil {
			return Context{}, svcErr
		}
		return Context{}, errors.InvalidToken(err)
	}
	if !token.Valid {
		return Context{}, errors.InvalidToken(nil)
	}

	return contextFromClaims(claims)
}

func contextFromClaims(claims *Claims) (Context, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Context{}, errors.InvalidToken(err).WithDetails("reason", "subject is not a uuid")
	}
	tenant, err := uuid.Parse(claims.Tenant)
	if err != nil {
		return Context{}, errors.InvalidToken(err).WithDetails("reason", "tenant is not a uuid")
	}
	return Context{ID: id, Tenant: tenant, Name: claims.Name, Email: claims.Email}, nil
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return header[len(bearerPrefix):]
}

func (g *Gate) respondError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = errors.Internal("Authentication failed", err)
	}
	httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}
