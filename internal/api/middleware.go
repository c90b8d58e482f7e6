package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const sessionContextKey contextKey = "client_session"

// AuthMiddleware resolves the bearer token to a client session and puts
// it on the request context. Requests without an open session are
// rejected before they reach a handler.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		cs, ok := s.sessions.Resolve(token)
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized", "no active session for token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, cs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func sessionFromContext(ctx context.Context) (*ClientSession, bool) {
	cs, ok := ctx.Value(sessionContextKey).(*ClientSession)
	return cs, ok
}
