package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stashlog/stashlog/internal/auth"
	"github.com/stashlog/stashlog/internal/forms"
	"github.com/stashlog/stashlog/internal/model"
)

func (h *Handler) EventCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	vars := mux.Vars(r)
	collectionID, _ := strconv.ParseInt(vars["collectionID"], 10, 64)
	itemID, _ := strconv.ParseInt(vars["itemID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, collectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.store.Items().GetByID(r.Context(), user.ID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item.CollectionID != col.ID {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	form := &forms.EventForm{Comment: r.PostFormValue("comment")}
	if errs := form.Validate(); len(errs) == 0 {
		_, err := h.store.Events().Create(r.Context(), user.ID, &model.Event{
			ItemID:  item.ID,
			Comment: form.Comment,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
	}

	// The event list lives outside the form's swap target, so a plain
	// fragment response cannot show the new row. Reload the whole view.
	if isHTMX(r) {
		hxRefresh(w)
		return
	}
	http.Redirect(w, r, collectionURL(col), http.StatusSeeOther)
}

// EventCreateForm has no page of its own; the add-event form lives inline
// on the collection detail view.
func (h *Handler) EventCreateForm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	collectionID, _ := strconv.ParseInt(mux.Vars(r)["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, collectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, collectionURL(col), http.StatusSeeOther)
}

func (h *Handler) EventDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	eventID, _ := strconv.ParseInt(mux.Vars(r)["eventID"], 10, 64)

	ev, err := h.store.Events().GetByID(r.Context(), user.ID, eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render.Page(w, http.StatusOK, "confirm_delete.html", &viewData{
		User:       user,
		Title:      "Delete event",
		Message:    fmt.Sprintf("Delete this event for %q?", ev.ItemName),
		FormAction: fmt.Sprintf("/collections/item/event/%d/delete/", ev.ID),
	})
}

func (h *Handler) EventDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	eventID, _ := strconv.ParseInt(mux.Vars(r)["eventID"], 10, 64)

	ev, err := h.store.Events().GetByID(r.Context(), user.ID, eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.store.Items().GetByID(r.Context(), user.ID, ev.ItemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	col, err := h.store.Collections().GetByID(r.Context(), user.ID, item.CollectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Events().Delete(r.Context(), user.ID, ev.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, collectionURL(col))
}
