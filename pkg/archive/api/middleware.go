package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/archivehub/archive-hub/pkg/archive"
)

// adminRole is the role claim value that grants admin capability.
const adminRole = "admin"

// IdentityVerifier creates a new token authority for HS256 bearer tokens.
func IdentityVerifier(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IdentityMiddleware resolves the request's bearer token into an
// archive.Identity. A missing or invalid token yields the anonymous
// identity rather than a rejection; the service layer decides which
// operations require authentication.
func IdentityMiddleware(auth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		resolve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFromRequest(r)
			ctx := archive.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
		return jwtauth.Verifier(auth)(resolve)
	}
}

func identityFromRequest(r *http.Request) archive.Identity {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return archive.Anonymous
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		slog.Warn("Token verified but no subject claim present")
		return archive.Anonymous
	}

	role, _ := claims["role"].(string)
	return archive.Identity{
		ID:      sub,
		IsAdmin: role == adminRole,
	}
}
