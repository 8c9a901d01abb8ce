package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/logger"
)

const (
	CartSessionCookie = "cart_session"
	CartSessionHeader = "X-Cart-Session"
)

// CartSession resolves the anonymous cart id from the header or cookie and
// issues a fresh one when neither carries a valid uuid.
func CartSession(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := presentedCartSession(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(CartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func presentedCartSession(r *http.Request) string {
	candidates := []string{r.Header.Get(CartSessionHeader)}
	if c, err := r.Cookie(CartSessionCookie); err == nil {
		candidates = append(candidates, c.Value)
	}
	for _, raw := range candidates {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			return id.String()
		}
	}
	return ""
}
