package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stashlog/stashlog/internal/auth"
	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// Handler carries the dependencies shared by every HTTP handler.
type Handler struct {
	store    store.Store
	sessions *auth.Sessions
	render   *Renderer
	log      zerolog.Logger
}

func NewHandler(st store.Store, sessions *auth.Sessions, log zerolog.Logger) (*Handler, error) {
	rd, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{store: st, sessions: sessions, render: rd, log: log}, nil
}

// currentUser resolves the session user on pages that work both signed in
// and anonymous. Returns nil when there is no valid session.
func (h *Handler) currentUser(r *http.Request) *model.User {
	id, ok := h.sessions.UserID(r)
	if !ok {
		return nil
	}
	u, err := h.store.Users().GetByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return u
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, http.StatusNotFound, "error.html", &viewData{
		User:    h.currentUser(r),
		Title:   "Not found",
		Message: "The page you asked for does not exist.",
	})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("handler failed")
	h.render.Page(w, http.StatusInternalServerError, "error.html", &viewData{
		User:    h.currentUser(r),
		Title:   "Something went wrong",
		Message: "An unexpected error occurred. Please try again.",
	})
}

// fail maps a storage error onto the right error page. Rows the user does
// not own surface as ErrNotFound, so a 404 here covers both missing and
// foreign rows.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	h.serverError(w, r, err)
}
