package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stashlog/stashlog/internal/auth"
)

// NewRouter wires every route. Collection, item, and event routes sit
// behind the login requirement; the fixed-segment routes are registered
// before the slug catch-all so "update", "delete" and "item" are never
// mistaken for collection slugs.
func NewRouter(h *Handler, sessions *auth.Sessions, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recovery(log), RequestLogger(log))

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/goodbye/", h.Goodbye).Methods(http.MethodGet)
	r.HandleFunc("/login/", h.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login/", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout/", h.Logout).Methods(http.MethodPost)

	requireUser := auth.RequireUser(sessions, h.store.Users())
	protected := func(fn http.HandlerFunc) http.Handler { return requireUser(fn) }

	r.Handle("/collections/", protected(h.CollectionList)).Methods(http.MethodGet)
	r.Handle("/collections/", protected(h.CollectionCreate)).Methods(http.MethodPost)
	r.Handle("/collections/update/{slug}/{collectionID:[0-9]+}/", protected(h.CollectionUpdateForm)).Methods(http.MethodGet)
	r.Handle("/collections/update/{slug}/{collectionID:[0-9]+}/", protected(h.CollectionUpdate)).Methods(http.MethodPost)
	r.Handle("/collections/delete/{slug}/{collectionID:[0-9]+}/", protected(h.CollectionDeleteConfirm)).Methods(http.MethodGet)
	r.Handle("/collections/delete/{slug}/{collectionID:[0-9]+}/", protected(h.CollectionDelete)).Methods(http.MethodPost, http.MethodDelete)
	r.Handle("/collections/item/create/{collectionID:[0-9]+}/", protected(h.ItemCreateForm)).Methods(http.MethodGet)
	r.Handle("/collections/item/create/{collectionID:[0-9]+}/", protected(h.ItemCreate)).Methods(http.MethodPost)
	r.Handle("/collections/item/update/{itemID:[0-9]+}/", protected(h.ItemUpdateForm)).Methods(http.MethodGet)
	r.Handle("/collections/item/update/{itemID:[0-9]+}/", protected(h.ItemUpdate)).Methods(http.MethodPost)
	r.Handle("/collections/item/delete/{itemID:[0-9]+}/", protected(h.ItemDeleteConfirm)).Methods(http.MethodGet)
	r.Handle("/collections/item/delete/{itemID:[0-9]+}/", protected(h.ItemDelete)).Methods(http.MethodPost, http.MethodDelete)
	r.Handle("/collections/item/event/{eventID:[0-9]+}/delete/", protected(h.EventDeleteConfirm)).Methods(http.MethodGet)
	r.Handle("/collections/item/event/{eventID:[0-9]+}/delete/", protected(h.EventDelete)).Methods(http.MethodPost, http.MethodDelete)
	r.Handle("/collections/{collectionID:[0-9]+}/item/{itemID:[0-9]+}/event/create/", protected(h.EventCreateForm)).Methods(http.MethodGet)
	r.Handle("/collections/{collectionID:[0-9]+}/item/{itemID:[0-9]+}/event/create/", protected(h.EventCreate)).Methods(http.MethodPost)
	r.Handle("/collections/{slug}/{collectionID:[0-9]+}/", protected(h.CollectionDetail)).Methods(http.MethodGet)
	r.Handle("/search/", protected(h.Search)).Methods(http.MethodGet)
	r.Handle("/accounts/user/profile/", protected(h.Profile)).Methods(http.MethodGet)
	r.Handle("/accounts/user/d/", protected(h.AccountDelete)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	return r
}
