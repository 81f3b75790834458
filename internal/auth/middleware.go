package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Middleware authenticates bearer tokens and gates handlers by role.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Authenticate resolves the Authorization header to a live user and stores it
// in the request context. Fails closed with 401 on any problem.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.RespondError(w, fmt.Errorf("%w: authorization header missing", httpx.ErrUnauthorized))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			httpx.RespondError(w, fmt.Errorf("%w: invalid authorization header", httpx.ErrUnauthorized))
			return
		}
		user, err := m.Service.ResolveBearer(r.Context(), token)
		if err != nil {
			m.Logger.Warn("bearer rejected", slog.String("path", r.URL.Path))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// RequireRoles allows only the listed roles through.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
