package forms_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashlog/stashlog/internal/forms"
	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
	"github.com/stashlog/stashlog/internal/store/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "forms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollectionForm_Create(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u, err := s.Users().Create(ctx, "alice", "h")
	require.NoError(t, err)
	_, err = s.Collections().Create(ctx, &model.Collection{OwnerID: u.ID, Name: "Books", Slug: "books"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{"empty", "", forms.ErrRequired},
		{"blank", "   ", forms.ErrRequired},
		{"too long", strings.Repeat("x", 256), forms.ErrTooLong},
		{"duplicate", "Books", forms.ErrCollectionExists},
		{"duplicate other case", "bOOks", forms.ErrCollectionExists},
		{"fresh name", "Films", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := forms.CollectionForm{Name: tc.input}
			errs, err := f.Validate(ctx, s.Collections(), u.ID, 0)
			require.NoError(t, err)
			require.Equal(t, tc.wantCode, errs.Get("name"))
		})
	}
}

func TestCollectionForm_RenameToOwnNameAllowed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u, err := s.Users().Create(ctx, "alice", "h")
	require.NoError(t, err)
	c, err := s.Collections().Create(ctx, &model.Collection{OwnerID: u.ID, Name: "Books", Slug: "books"})
	require.NoError(t, err)
	other, err := s.Collections().Create(ctx, &model.Collection{OwnerID: u.ID, Name: "Films", Slug: "films"})
	require.NoError(t, err)

	// Same name, any case, is never a duplicate of itself.
	for _, name := range []string{"Books", "books", "BOOKS"} {
		f := forms.CollectionForm{Name: name}
		errs, err := f.Validate(ctx, s.Collections(), u.ID, c.ID)
		require.NoError(t, err)
		require.Empty(t, errs)
	}

	// Renaming onto a sibling still fails.
	f := forms.CollectionForm{Name: "films"}
	errs, err := f.Validate(ctx, s.Collections(), u.ID, c.ID)
	require.NoError(t, err)
	require.Equal(t, forms.ErrCollectionExists, errs.Get("name"))
	_ = other
}

func TestCollectionForm_DuplicateScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	alice, err := s.Users().Create(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := s.Users().Create(ctx, "bob", "h")
	require.NoError(t, err)
	_, err = s.Collections().Create(ctx, &model.Collection{OwnerID: alice.ID, Name: "Books", Slug: "books"})
	require.NoError(t, err)

	f := forms.CollectionForm{Name: "books"}
	errs, err := f.Validate(ctx, s.Collections(), bob.ID, 0)
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestCollectionForm_Slug(t *testing.T) {
	f := forms.CollectionForm{Name: "  My Vinyl Records  "}
	f.Normalize()
	require.Equal(t, "My Vinyl Records", f.Name)
	require.Equal(t, "my-vinyl-records", f.Slug())
}

func TestItemForm(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u, err := s.Users().Create(ctx, "alice", "h")
	require.NoError(t, err)
	c, err := s.Collections().Create(ctx, &model.Collection{OwnerID: u.ID, Name: "Books", Slug: "books"})
	require.NoError(t, err)
	it, err := s.Items().Create(ctx, u.ID, &model.Item{CollectionID: c.ID, Name: "Dune"})
	require.NoError(t, err)

	f := forms.ItemForm{Name: "dune"}
	errs, err := f.Validate(ctx, s.Items(), u.ID, c.ID, 0)
	require.NoError(t, err)
	require.Equal(t, forms.ErrItemExists, errs.Get("name"))

	// Updating the item under its own name is not a duplicate.
	errs, err = f.Validate(ctx, s.Items(), u.ID, c.ID, it.ID)
	require.NoError(t, err)
	require.Empty(t, errs)

	f = forms.ItemForm{Name: ""}
	errs, err = f.Validate(ctx, s.Items(), u.ID, c.ID, 0)
	require.NoError(t, err)
	require.Equal(t, forms.ErrRequired, errs.Get("name"))
}

func TestEventForm(t *testing.T) {
	f := forms.EventForm{Comment: "  finished chapter 3  "}
	require.Empty(t, f.Validate())
	require.Equal(t, "finished chapter 3", f.Comment)

	long := forms.EventForm{Comment: strings.Repeat("x", 300)}
	require.Equal(t, forms.ErrTooLong, long.Validate().Get("comment"))

	empty := forms.EventForm{}
	require.Empty(t, empty.Validate())
}
