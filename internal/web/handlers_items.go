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

func (h *Handler) ItemCreateForm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	collectionID, _ := strconv.ParseInt(mux.Vars(r)["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, collectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render.Page(w, http.StatusOK, "item_create.html", &viewData{
		User:       user,
		Collection: col,
		Form:       &forms.ItemForm{},
		FormAction: fmt.Sprintf("/collections/item/create/%d/", col.ID),
		Title:      "Add item",
	})
}

func (h *Handler) ItemCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	collectionID, _ := strconv.ParseInt(mux.Vars(r)["collectionID"], 10, 64)

	col, err := h.store.Collections().GetByID(r.Context(), user.ID, collectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	form := &forms.ItemForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	form.Normalize()

	errs, err := form.Validate(r.Context(), h.store.Items(), user.ID, col.ID, 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(errs) == 0 {
		_, err := h.store.Items().Create(r.Context(), user.ID, &model.Item{
			CollectionID: col.ID,
			Name:         form.Name,
			Description:  form.Description,
		})
		switch {
		case errors.Is(err, model.ErrConflict):
			errs = forms.FieldErrors{"name": forms.ErrItemExists}
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			if isHTMX(r) {
				// Hand back a fresh form so the user can keep adding;
				// the client listens for this event to flash a notice.
				hxTriggerAfterSwap(w, "success")
				h.render.Partial(w, http.StatusOK, "item_form", &viewData{
					User:       user,
					Collection: col,
					Form:       &forms.ItemForm{},
					FormAction: fmt.Sprintf("/collections/item/create/%d/", col.ID),
				})
				return
			}
			http.Redirect(w, r, collectionURL(col), http.StatusSeeOther)
			return
		}
	}

	data := &viewData{
		User:       user,
		Collection: col,
		Form:       form,
		Errors:     errs,
		FormAction: fmt.Sprintf("/collections/item/create/%d/", col.ID),
		Title:      "Add item",
	}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "item_form", data)
		return
	}
	h.render.Page(w, http.StatusOK, "item_create.html", data)
}

func (h *Handler) ItemUpdateForm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["itemID"], 10, 64)

	item, err := h.store.Items().GetByID(r.Context(), user.ID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	col, err := h.store.Collections().GetByID(r.Context(), user.ID, item.CollectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render.Page(w, http.StatusOK, "item_update.html", &viewData{
		User:       user,
		Collection: col,
		Item:       item,
		Form:       &forms.ItemForm{Name: item.Name, Description: item.Description},
		FormAction: fmt.Sprintf("/collections/item/update/%d/", item.ID),
		Title:      "Edit " + item.Name,
	})
}

func (h *Handler) ItemUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["itemID"], 10, 64)

	item, err := h.store.Items().GetByID(r.Context(), user.ID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	col, err := h.store.Collections().GetByID(r.Context(), user.ID, item.CollectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.serverError(w, r, err)
		return
	}
	form := &forms.ItemForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	form.Normalize()

	errs, err := form.Validate(r.Context(), h.store.Items(), user.ID, col.ID, item.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(errs) == 0 {
		item.Name = form.Name
		item.Description = form.Description
		_, err := h.store.Items().Update(r.Context(), user.ID, item)
		switch {
		case errors.Is(err, model.ErrConflict):
			errs = forms.FieldErrors{"name": forms.ErrItemExists}
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			redirect(w, r, collectionURL(col))
			return
		}
	}

	data := &viewData{
		User:       user,
		Collection: col,
		Item:       item,
		Form:       form,
		Errors:     errs,
		FormAction: fmt.Sprintf("/collections/item/update/%d/", item.ID),
		Title:      "Edit " + item.Name,
	}
	if isHTMX(r) {
		h.render.Partial(w, http.StatusOK, "item_form", data)
		return
	}
	h.render.Page(w, http.StatusOK, "item_update.html", data)
}

func (h *Handler) ItemDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["itemID"], 10, 64)

	item, err := h.store.Items().GetByID(r.Context(), user.ID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render.Page(w, http.StatusOK, "confirm_delete.html", &viewData{
		User:       user,
		Title:      "Delete " + item.Name,
		Message:    fmt.Sprintf("Delete %q and its logged events?", item.Name),
		FormAction: fmt.Sprintf("/collections/item/delete/%d/", item.ID),
	})
}

func (h *Handler) ItemDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	itemID, _ := strconv.ParseInt(mux.Vars(r)["itemID"], 10, 64)

	item, err := h.store.Items().GetByID(r.Context(), user.ID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	col, err := h.store.Collections().GetByID(r.Context(), user.ID, item.CollectionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Items().Delete(r.Context(), user.ID, item.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, collectionURL(col))
}
