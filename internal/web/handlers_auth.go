package web

import (
	"net/http"
	"strings"

	"github.com/stashlog/stashlog/internal/auth"
)

const defaultAfterLogin = "/collections/"

// safeNext accepts only site-local paths for the post-login destination.
// Anything else falls back to the collections page.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return defaultAfterLogin
	}
	return next
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	h.render.Page(w, http.StatusOK, "index.html", &viewData{User: h.currentUser(r)})
}

func (h *Handler) Goodbye(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, http.StatusOK, "goodbye.html", &viewData{Title: "Goodbye"})
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if u := h.currentUser(r); u != nil {
		http.Redirect(w, r, defaultAfterLogin, http.StatusSeeOther)
		return
	}
	h.render.Page(w, http.StatusOK, "login.html", &viewData{
		Title: "Log in",
		Next:  safeNext(r.URL.Query().Get("next")),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	u, err := h.store.Users().GetByUsername(r.Context(), username)
	if err != nil || !auth.CheckPassword(u.PasswordHash, password) {
		h.render.Page(w, http.StatusOK, "login.html", &viewData{
			Title:   "Log in",
			Next:    next,
			Message: "Invalid username or password.",
		})
		return
	}
	if err := h.sessions.SignIn(w, r, u.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
