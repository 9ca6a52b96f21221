package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// LoginURL is where anonymous requests to protected pages are sent.
const LoginURL = "/login/"

type userKey struct{}

// RequireUser loads the signed-in user and injects it into the request
// context. Anonymous requests are redirected to the login page with the
// original path in the next parameter. A session pointing at a deleted
// user is treated as anonymous.
func RequireUser(s *Sessions, users store.Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := s.UserID(r)
			if !ok {
				toLogin(w, r)
				return
			}
			u, err := users.GetByID(r.Context(), id)
			if err != nil {
				_ = s.SignOut(w, r)
				toLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
}

// WithUser returns a context carrying the user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user stored by RequireUser, or nil.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}
