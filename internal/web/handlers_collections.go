package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/stashlog/stashlog/internal/auth"
	"github.com/stashlog/stashlog/internal/forms"
	"github.com/stashlog/stashlog/internal/model"
)

func collectionURL(c *model.Collection) string {
	return fmt.Sprintf("/collections/%s/%d/", c.Slug, c.ID)
}

func (h *Handler) CollectionList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	cols, err := h.store.Collections().ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := &viewData{User: user, Collections: cols, Title: "Collections", Form: &forms.CollectionForm{}}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "collection_list", data)
		return
	}
	h.render.Page(w, http.StatusOK, "collections.html", data)
}

func (h *Handler) CollectionCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	form := &forms.CollectionForm{Name: r.PostFormValue("name")}
	form.Normalize()

	errs, err := form.Validate(r.Context(), h.store.Collections(), user.ID, 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(errs) == 0 {
		_, err := h.store.Collections().Create(r.Context(), &model.Collection{
			OwnerID: user.ID,
			Name:    form.Name,
			Slug:    form.Slug(),
		})
		switch {
		case errors.Is(err, model.ErrConflict):
			// Lost a race with a concurrent create; report it like any
			// other duplicate.
			errs = forms.FieldErrors{"name": forms.ErrCollectionExists}
		case err != nil:
			h.serverError(w, r, err)
			return
		default:
			form = &forms.CollectionForm{}
		}
	}

	cols, err := h.store.Collections().ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := &viewData{User: user, Collections: cols, Form: form, Errors: errs, Title: "Collections"}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "collection_list", data)
		return
	}
	h.render.Page(w, http.StatusOK, "collections.html", data)
}

func (h *Handler) CollectionDetail(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	vars := mux.Vars(r)
	id, _ := strconv.ParseInt(vars["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Stale or hand-edited slugs get sent to the canonical URL.
	if vars["slug"] != col.Slug {
		http.Redirect(w, r, collectionURL(col), http.StatusMovedPermanently)
		return
	}

	items, err := h.store.Items().ListByCollection(r.Context(), user.ID, col.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	total, err := h.store.Events().CountByCollection(r.Context(), user.ID, col.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	page := NewPage(pageNum, eventsPerPage, total)
	events, err := h.store.Events().ListByCollection(r.Context(), user.ID, col.ID, page.Size, page.Offset())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := &viewData{
		User:       user,
		Collection: col,
		Items:      items,
		Events:     events,
		Page:       page,
		Title:      col.Name,
	}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "collection_panel", data)
		return
	}
	h.render.Page(w, http.StatusOK, "collection_detail.html", data)
}

func (h *Handler) CollectionUpdateForm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	id, _ := strconv.ParseInt(mux.Vars(r)["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render.Page(w, http.StatusOK, "collection_update.html", &viewData{
		User:       user,
		Collection: col,
		Form:       &forms.CollectionForm{Name: col.Name},
		FormAction: fmt.Sprintf("/collections/update/%s/%d/", col.Slug, col.ID),
		Title:      "Rename " + col.Name,
	})
}

func (h *Handler) CollectionUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	id, _ := strconv.ParseInt(mux.Vars(r)["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	form := &forms.CollectionForm{Name: r.PostFormValue("name")}
	form.Normalize()

	errs, err := form.Validate(r.Context(), h.store.Collections(), user.ID, col.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(errs) == 0 {
		updated, err := h.store.Collections().Rename(r.Context(), user.ID, col.ID, form.Name, form.Slug())
		switch {
		case errors.Is(err, model.ErrConflict):
			errs = forms.FieldErrors{"name": forms.ErrCollectionExists}
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			redirect(w, r, collectionURL(updated))
			return
		}
	}

	data := &viewData{
		User:       user,
		Collection: col,
		Form:       form,
		Errors:     errs,
		FormAction: fmt.Sprintf("/collections/update/%s/%d/", col.Slug, col.ID),
		Title:      "Rename " + col.Name,
	}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "collection_form", data)
		return
	}
	h.render.Page(w, http.StatusOK, "collection_update.html", data)
}

// CollectionDeleteConfirm is the no-script confirmation page; the quick
// path in the UI issues the DELETE directly.
func (h *Handler) CollectionDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	vars := mux.Vars(r)
	id, _ := strconv.ParseInt(vars["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if vars["slug"] != col.Slug {
		h.NotFound(w, r)
		return
	}
	h.render.Page(w, http.StatusOK, "confirm_delete.html", &viewData{
		User:       user,
		Title:      "Delete " + col.Name,
		Message:    fmt.Sprintf("Delete %q and every item and event in it?", col.Name),
		FormAction: fmt.Sprintf("/collections/delete/%s/%d/", col.Slug, col.ID),
	})
}

func (h *Handler) CollectionDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	vars := mux.Vars(r)
	id, _ := strconv.ParseInt(vars["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if vars["slug"] != col.Slug {
		h.NotFound(w, r)
		return
	}
	if err := h.store.Collections().Delete(r.Context(), user.ID, col.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/collections/")
}
