package web

import (
	"net/http"

	"github.com/stashlog/stashlog/internal/auth"
)

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	h.render.Page(w, http.StatusOK, "profile.html", &viewData{User: user, Title: user.Username})
}

// AccountDelete removes the user and, through cascades, all of their data,
// then ends the session.
func (h *Handler) AccountDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	if err := h.store.Users().Delete(r.Context(), user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.sessions.SignOut(w, r); err != nil {
		h.log.Error().Err(err).Msg("sign out after account deletion failed")
	}
	redirect(w, r, "/goodbye/")
}
