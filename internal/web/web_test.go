package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stashlog/stashlog/internal/auth"
	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
	"github.com/stashlog/stashlog/internal/store/sqlite"
)

type fixture struct {
	t        *testing.T
	store    store.Store
	sessions *auth.Sessions
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions := auth.NewSessions("test-secret", false)
	h, err := NewHandler(st, sessions, zerolog.Nop())
	require.NoError(t, err)
	return &fixture{t: t, store: st, sessions: sessions, router: NewRouter(h, sessions, zerolog.Nop())}
}

// newUser creates a user and returns it with session cookies for requests.
func (f *fixture) newUser(username string) (*model.User, []*http.Cookie) {
	f.t.Helper()
	u, err := f.store.Users().Create(context.Background(), username, "unused-hash")
	require.NoError(f.t, err)

	rec := httptest.NewRecorder()
	require.NoError(f.t, f.sessions.SignIn(rec, httptest.NewRequest("GET", "/", nil), u.ID))
	return u, rec.Result().Cookies()
}

type reqOpts struct {
	form    url.Values
	cookies []*http.Cookie
	htmx    bool
}

func (f *fixture) do(method, path string, o reqOpts) *httptest.ResponseRecorder {
	f.t.Helper()
	var req *http.Request
	if o.form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(o.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if o.htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range o.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) mustCollection(ownerID int64, name, slug string) *model.Collection {
	f.t.Helper()
	c, err := f.store.Collections().Create(context.Background(), &model.Collection{OwnerID: ownerID, Name: name, Slug: slug})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) mustItem(ownerID, collectionID int64, name string) *model.Item {
	f.t.Helper()
	it, err := f.store.Items().Create(context.Background(), ownerID, &model.Item{CollectionID: collectionID, Name: name})
	require.NoError(f.t, err)
	return it
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	f := newFixture(t)
	w := f.do("GET", "/collections/", reqOpts{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login/?next=%2Fcollections%2F", w.Header().Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	_, err = f.store.Users().Create(context.Background(), "alice", hash)
	require.NoError(t, err)

	w := f.do("GET", "/login/", reqOpts{})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do("POST", "/login/", reqOpts{form: url.Values{
		"username": {"alice"}, "password": {"wrong"},
	}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Invalid username or password.")

	w = f.do("POST", "/login/", reqOpts{form: url.Values{
		"username": {"alice"}, "password": {"correct horse"},
	}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/collections/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	w = f.do("GET", "/collections/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Your collections")
}

func TestLoginNextMustBeLocal(t *testing.T) {
	f := newFixture(t)
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	_, err = f.store.Users().Create(context.Background(), "alice", hash)
	require.NoError(t, err)

	w := f.do("POST", "/login/", reqOpts{form: url.Values{
		"username": {"alice"}, "password": {"pw"}, "next": {"https://evil.example/"},
	}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/collections/", w.Header().Get("Location"))

	w = f.do("POST", "/login/", reqOpts{form: url.Values{
		"username": {"alice"}, "password": {"pw"}, "next": {"//evil.example/"},
	}})
	require.Equal(t, "/collections/", w.Header().Get("Location"))
}

func TestCollectionCreate(t *testing.T) {
	f := newFixture(t)
	_, cookies := f.newUser("alice")

	w := f.do("POST", "/collections/", reqOpts{
		form: url.Values{"name": {"Books"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Books")
	// Fragment response, not a full document.
	require.NotContains(t, w.Body.String(), "<html")

	// Same name, different case: rejected with the form re-rendered.
	w = f.do("POST", "/collections/", reqOpts{
		form: url.Values{"name": {"books"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "You already have a collection with this name.")

	// Blank name.
	w = f.do("POST", "/collections/", reqOpts{
		form: url.Values{"name": {"   "}}, cookies: cookies, htmx: true,
	})
	require.Contains(t, w.Body.String(), "This field is required.")

	// A plain form post renders the full page.
	w = f.do("POST", "/collections/", reqOpts{
		form: url.Values{"name": {"Vinyl"}}, cookies: cookies,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<html")
	require.Contains(t, w.Body.String(), "Vinyl")
}

func TestCollectionDetailPagination(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	it := f.mustItem(u.ID, col.ID, "Dune")
	for i := 0; i < 30; i++ {
		_, err := f.store.Events().Create(context.Background(), u.ID, &model.Event{
			ItemID: it.ID, Comment: fmt.Sprintf("read %d", i),
		})
		require.NoError(t, err)
	}

	w := f.do("GET", "/collections/books/"+itoa(col.ID)+"/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Page 1 of 2")
	require.Contains(t, w.Body.String(), "read 29")

	w = f.do("GET", "/collections/books/"+itoa(col.ID)+"/?page=2", reqOpts{cookies: cookies})
	require.Contains(t, w.Body.String(), "Page 2 of 2")
	require.Contains(t, w.Body.String(), "read 0")

	// Out-of-range pages clamp instead of erroring.
	w = f.do("GET", "/collections/books/"+itoa(col.ID)+"/?page=99", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Page 2 of 2")

	w = f.do("GET", "/collections/books/"+itoa(col.ID)+"/?page=0", reqOpts{cookies: cookies})
	require.Contains(t, w.Body.String(), "Page 1 of 2")
}

func TestCollectionDetailCanonicalSlug(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")

	w := f.do("GET", "/collections/old-slug/"+itoa(col.ID)+"/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusMovedPermanently, w.Code)
	require.Equal(t, "/collections/books/"+itoa(col.ID)+"/", w.Header().Get("Location"))
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.newUser("alice")
	col := f.mustCollection(alice.ID, "Books", "books")
	it := f.mustItem(alice.ID, col.ID, "Dune")
	ev, err := f.store.Events().Create(context.Background(), alice.ID, &model.Event{ItemID: it.ID})
	require.NoError(t, err)

	_, bobCookies := f.newUser("bob")

	w := f.do("GET", "/collections/books/"+itoa(col.ID)+"/", reqOpts{cookies: bobCookies})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/collections/item/delete/"+itoa(it.ID)+"/", reqOpts{cookies: bobCookies, form: url.Values{}})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/collections/item/event/"+itoa(ev.ID)+"/delete/", reqOpts{cookies: bobCookies, form: url.Values{}})
	require.Equal(t, http.StatusNotFound, w.Code)

	// The row is untouched.
	_, err = f.store.Events().GetByID(context.Background(), alice.ID, ev.ID)
	require.NoError(t, err)
}

func TestItemCreate(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")

	w := f.do("POST", "/collections/item/create/"+itoa(col.ID)+"/", reqOpts{
		form: url.Values{"name": {"Dune"}, "description": {"Herbert"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "success", w.Header().Get("HX-Trigger-After-Swap"))

	// Duplicate within the collection re-renders the form without the
	// success trigger.
	w = f.do("POST", "/collections/item/create/"+itoa(col.ID)+"/", reqOpts{
		form: url.Values{"name": {"dune"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("HX-Trigger-After-Swap"))
	require.Contains(t, w.Body.String(), "This collection already has an item with this name.")

	// Plain post lands back on the collection page.
	w = f.do("POST", "/collections/item/create/"+itoa(col.ID)+"/", reqOpts{
		form: url.Values{"name": {"Foundation"}}, cookies: cookies,
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/collections/books/"+itoa(col.ID)+"/", w.Header().Get("Location"))
}

func TestItemUpdate(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	it := f.mustItem(u.ID, col.ID, "Dune")

	w := f.do("GET", "/collections/item/update/"+itoa(it.ID)+"/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Dune")

	w = f.do("POST", "/collections/item/update/"+itoa(it.ID)+"/", reqOpts{
		form: url.Values{"name": {"Dune Messiah"}}, cookies: cookies,
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	got, err := f.store.Items().GetByID(context.Background(), u.ID, it.ID)
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", got.Name)
}

func TestEventCreate(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	it := f.mustItem(u.ID, col.ID, "Dune")
	path := "/collections/" + itoa(col.ID) + "/item/" + itoa(it.ID) + "/event/create/"

	// Fragment request answers with a full-view refresh; the list lives
	// outside the form's swap target.
	w := f.do("POST", path, reqOpts{
		form: url.Values{"comment": {"started reading"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "true", w.Header().Get("HX-Refresh"))

	events, err := f.store.Events().ListByCollection(context.Background(), u.ID, col.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "started reading", events[0].Comment)
	require.Equal(t, "Dune", events[0].ItemName)

	// Plain post redirects back to the collection.
	w = f.do("POST", path, reqOpts{form: url.Values{"comment": {""}}, cookies: cookies})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/collections/books/"+itoa(col.ID)+"/", w.Header().Get("Location"))

	// An item from another collection cannot be targeted through this URL.
	other := f.mustCollection(u.ID, "Vinyl", "vinyl")
	foreign := f.mustItem(u.ID, other.ID, "LP")
	w = f.do("POST", "/collections/"+itoa(col.ID)+"/item/"+itoa(foreign.ID)+"/event/create/",
		reqOpts{form: url.Values{"comment": {"x"}}, cookies: cookies})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollectionRename(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	f.mustCollection(u.ID, "Vinyl", "vinyl")

	// Renaming to its own name is fine.
	w := f.do("POST", "/collections/update/books/"+itoa(col.ID)+"/", reqOpts{
		form: url.Values{"name": {"BOOKS"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/collections/books/"+itoa(col.ID)+"/", w.Header().Get("HX-Redirect"))

	// Renaming onto a sibling is not.
	w = f.do("POST", "/collections/update/books/"+itoa(col.ID)+"/", reqOpts{
		form: url.Values{"name": {"vinyl"}}, cookies: cookies, htmx: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "You already have a collection with this name.")
}

func TestCollectionDelete(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")

	// GET shows the confirmation page.
	w := f.do("GET", "/collections/delete/books/"+itoa(col.ID)+"/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Delete Books")

	// The slug in the URL must match the collection.
	w = f.do("POST", "/collections/delete/wrong/"+itoa(col.ID)+"/", reqOpts{cookies: cookies, form: url.Values{}})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/collections/delete/books/"+itoa(col.ID)+"/", reqOpts{cookies: cookies, form: url.Values{}, htmx: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/collections/", w.Header().Get("HX-Redirect"))

	_, err := f.store.Collections().GetByID(context.Background(), u.ID, col.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestEventDelete(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	it := f.mustItem(u.ID, col.ID, "Dune")
	ev, err := f.store.Events().Create(context.Background(), u.ID, &model.Event{ItemID: it.ID, Comment: "x"})
	require.NoError(t, err)

	// GET shows the confirmation page.
	w := f.do("GET", "/collections/item/event/"+itoa(ev.ID)+"/delete/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Dune")

	// hx-delete sends DELETE and gets a client-side redirect back.
	w = f.do("DELETE", "/collections/item/event/"+itoa(ev.ID)+"/delete/", reqOpts{cookies: cookies, htmx: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "/collections/books/"+itoa(col.ID)+"/", w.Header().Get("HX-Redirect"))

	_, err = f.store.Events().GetByID(context.Background(), u.ID, ev.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	it := f.mustItem(u.ID, col.ID, "Dune")
	_, err := f.store.Events().Create(context.Background(), u.ID, &model.Event{ItemID: it.ID, Comment: "finished"})
	require.NoError(t, err)

	w := f.do("GET", "/search/?search=dun", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "finished")

	// Empty query matches nothing.
	w = f.do("GET", "/search/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "finished")

	// Fragment requests get just the results.
	w = f.do("GET", "/search/?search=dun", reqOpts{cookies: cookies, htmx: true})
	require.Contains(t, w.Body.String(), "finished")
	require.NotContains(t, w.Body.String(), "<html")
}

func TestAccountDelete(t *testing.T) {
	f := newFixture(t)
	u, cookies := f.newUser("alice")
	col := f.mustCollection(u.ID, "Books", "books")
	f.mustItem(u.ID, col.ID, "Dune")

	w := f.do("GET", "/accounts/user/profile/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice")

	w = f.do("POST", "/accounts/user/d/", reqOpts{cookies: cookies, form: url.Values{}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/goodbye/", w.Header().Get("Location"))

	_, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// The old session no longer works.
	w = f.do("GET", "/collections/", reqOpts{cookies: cookies})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/login/")
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do("GET", "/healthz", reqOpts{})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNotFoundPage(t *testing.T) {
	f := newFixture(t)
	w := f.do("GET", "/nope/", reqOpts{})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Not found")
}

func itoa(id int64) string { return fmt.Sprintf("%d", id) }
