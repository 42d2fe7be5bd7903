package middleware

import (
	"context"
	"net/http"
	"strings"

	authmodel "github.com/pcheng/weather-qna/backend/internal/model/auth"
	authservice "github.com/pcheng/weather-qna/backend/internal/service/auth"
	"github.com/pcheng/weather-qna/backend/pkg/utils"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "qna_session"

type contextKey struct{ name string }

var userKey = contextKey{"user"}

// Session resolves the caller's session token (cookie or bearer header) to a
// user and rejects unauthenticated requests.
func Session(authSvc *authservice.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := authSvc.Lookup(r.Context(), token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by Session.
func UserFrom(ctx context.Context) (authmodel.User, bool) {
	user, ok := ctx.Value(userKey).(authmodel.User)
	return user, ok
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
