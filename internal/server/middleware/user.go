package middleware

import (
	"net/http"
	"strings"

	"github.com/agentstation/productmap/pkg/logging"
	"github.com/agentstation/productmap/pkg/session"
)

// UserHeader names the signed in user of a request.
const UserHeader = "X-User-ID"

// User puts the user named by header into the request context. Requests
// without the header carry no user.
func User(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = UserHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(header))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := session.WithUser(r.Context(), session.User{ID: id})
			next.ServeHTTP(w, r.WithContext(logging.WithUser(ctx, id)))
		})
	}
}
