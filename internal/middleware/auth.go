package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/auth"
)

// IdentityContextKey holds the verified auth.Identity on the echo context.
const IdentityContextKey = "identity"

// TokenVerifier checks a bearer token. auth.Tokens implements it.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate resolves the caller from the Authorization header, falling
// back to the session cookie. Requests without a valid token continue
// anonymously; use RequireAuth to reject them.
func Authenticate(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				token = SessionToken(c)
			}
			if token != "" {
				if id, err := tokens.Verify(token); err == nil {
					c.Set(IdentityContextKey, id)
				} else {
					FromContext(c.Request().Context()).Debug("Rejected auth token", "error", err)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(IdentityContextKey).(auth.Identity)
	return id, ok
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := IdentityFrom(c); !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		return next(c)
	}
}

// RequireAdmin rejects anonymous callers with 401 and members with 403.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireAuth(func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		if !id.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
		}
		return next(c)
	})
}
