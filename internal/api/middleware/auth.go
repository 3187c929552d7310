package middleware

import (
	"context"
	"net/http"

	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
)

type contextKey string

const claimsKey contextKey = "adminClaims"

// SessionCookie holds the admin JWT.
const SessionCookie = "token"

// RequireAdmin rejects requests without a valid admin session. It lets
// everything through when authentication is disabled.
func RequireAdmin(sessions *services.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Enabled() || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := Authenticate(r, sessions)
			if !ok {
				utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
					Success: false,
					Message: "Unauthorized",
				})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate reads and verifies the session cookie of r.
func Authenticate(r *http.Request, sessions *services.SessionManager) (*services.AdminClaims, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	claims, err := sessions.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// AdminClaims returns the claims stored by RequireAdmin, if any.
func AdminClaims(ctx context.Context) (*services.AdminClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*services.AdminClaims)
	return c, ok
}
