package web

import (
	"net/http"
	"strings"

	"github.com/stashlog/stashlog/internal/auth"
)

// searchLimit caps result sets; search is a lookup aid, not a report.
const searchLimit = 100

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("search"))

	events, err := h.store.Events().Search(r.Context(), user.ID, query, searchLimit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := &viewData{User: user, Events: events, Query: query, Title: "Search"}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "search_results", data)
		return
	}
	h.render.Page(w, http.StatusOK, "search.html", data)
}
