package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/logging"
)

const sessionCookieName = "cicd_session"

type contextKey string

const sessionContextKey contextKey = "session_id"

// sessionCookie resolves the wizard session named by the cookie, starting a
// new one when the cookie is missing or the session has expired.
func (s *Server) sessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			_, err := s.wizard.Get(ctx, cookie.Value)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(withSessionID(ctx, cookie.Value)))
				return
			}
			if !errors.Is(err, domain.ErrNotFound) {
				logging.FromContext(ctx).Error("loading session", "error", err)
				s.renderError(w, "Failed to load session", http.StatusInternalServerError)
				return
			}
		}

		session, err := s.wizard.Start(ctx)
		if err != nil {
			logging.FromContext(ctx).Error("starting session", "error", err)
			s.renderError(w, "Failed to start session", http.StatusInternalServerError)
			return
		}
		s.setSessionCookie(w, session.ID)
		next.ServeHTTP(w, r.WithContext(withSessionID(ctx, session.ID)))
	})
}

func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionContextKey, id)
}

// sessionID retrieves the session id from context.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

// setSessionCookie sets the session cookie. It lasts as long as the browser
// session; idle sessions are purged server side.
func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.opts.CookieSecure,
	})
}
