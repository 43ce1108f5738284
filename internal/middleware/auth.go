package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/moevm/nosql1h25-cleanday/internal/auth"
)

type contextKey string

const loginKey contextKey = "login"

// RequireAuth проверяет заголовок Authorization: Bearer и кладёт логин
// в контекст запроса.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
				return
			}

			login, err := svc.ParseAccessToken(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					http.Error(w, "Token has expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), loginKey, login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginFromContext возвращает логин, положенный RequireAuth.
func LoginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(loginKey).(string)
	return login, ok
}
