package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "stashlog_session"
	userIDKey   = "userID"
)

// Sessions wraps the cookie session store. Only the user ID is kept in the
// cookie; the user row is loaded per request by the middleware.
type Sessions struct {
	store sessions.Store
}

// NewSessions builds a cookie-backed session store. secure should be true
// behind TLS so the cookie is never sent in the clear.
func NewSessions(secret string, secure bool) *Sessions {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: cs}
}

// SignIn records the user ID in the session cookie.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut drops the session cookie.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// UserID returns the signed-in user ID, if any.
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[userIDKey].(int64)
	return id, ok
}
