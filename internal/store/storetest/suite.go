package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique usernames so the suite can run against a persistent database.
	suffix := uuid.New().String()[:8]
	alice, err := s.Users().Create(ctx, "alice-"+suffix, "hash-a")
	if err != nil {
		t.Fatalf("CreateUser alice: %v", err)
	}
	bob, err := s.Users().Create(ctx, "bob-"+suffix, "hash-b")
	if err != nil {
		t.Fatalf("CreateUser bob: %v", err)
	}
	t.Cleanup(func() { _ = s.Users().Delete(context.Background(), bob.ID) })
	if got, err := s.Users().GetByUsername(ctx, strings.ToUpper(alice.Username)); err != nil || got.ID != alice.ID {
		t.Fatalf("GetByUsername case-insensitive: got=%v err=%v", got, err)
	}

	// Collections
	books, err := s.Collections().Create(ctx, &model.Collection{OwnerID: alice.ID, Name: "Books", Slug: "books"})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if _, err := s.Collections().Create(ctx, &model.Collection{OwnerID: alice.ID, Name: "books", Slug: "books"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate collection name: want ErrConflict, got %v", err)
	}
	// Same name for a different owner is fine.
	if _, err := s.Collections().Create(ctx, &model.Collection{OwnerID: bob.ID, Name: "Books", Slug: "books"}); err != nil {
		t.Fatalf("CreateCollection other owner: %v", err)
	}
	if got, err := s.Collections().FindByName(ctx, alice.ID, "BOOKS"); err != nil || got.ID != books.ID {
		t.Fatalf("FindByName: got=%v err=%v", got, err)
	}
	if _, err := s.Collections().GetByID(ctx, bob.ID, books.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user GetCollection: want ErrNotFound, got %v", err)
	}

	// Ordering by name.
	if _, err := s.Collections().Create(ctx, &model.Collection{OwnerID: alice.ID, Name: "Albums", Slug: "albums"}); err != nil {
		t.Fatalf("CreateCollection albums: %v", err)
	}
	lst, err := s.Collections().ListByOwner(ctx, alice.ID)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}
	if lst[0].Name != "Albums" || lst[1].Name != "Books" {
		t.Fatalf("ListByOwner order: got %q, %q", lst[0].Name, lst[1].Name)
	}

	// Items
	dune, err := s.Items().Create(ctx, alice.ID, &model.Item{CollectionID: books.ID, Name: "Dune", Description: "Herbert"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := s.Items().Create(ctx, alice.ID, &model.Item{CollectionID: books.ID, Name: "dune"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate item name: want ErrConflict, got %v", err)
	}
	if _, err := s.Items().Create(ctx, bob.ID, &model.Item{CollectionID: books.ID, Name: "Sneaky"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user CreateItem: want ErrNotFound, got %v", err)
	}
	if got, err := s.Items().FindByName(ctx, alice.ID, books.ID, "DUNE"); err != nil || got.ID != dune.ID {
		t.Fatalf("FindItemByName: got=%v err=%v", got, err)
	}
	if _, err := s.Items().GetByID(ctx, bob.ID, dune.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user GetItem: want ErrNotFound, got %v", err)
	}

	dune.Description = "Frank Herbert"
	if got, err := s.Items().Update(ctx, alice.ID, dune); err != nil || got.Description != "Frank Herbert" {
		t.Fatalf("UpdateItem: got=%v err=%v", got, err)
	}
	if _, err := s.Items().Update(ctx, bob.ID, dune); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user UpdateItem: want ErrNotFound, got %v", err)
	}

	// Events
	ev, err := s.Events().Create(ctx, alice.ID, &model.Event{ItemID: dune.ID, Comment: "started reading"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.ItemName != "Dune" {
		t.Fatalf("CreateEvent item name: got %q", ev.ItemName)
	}
	if _, err := s.Events().Create(ctx, bob.ID, &model.Event{ItemID: dune.ID, Comment: "nope"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user CreateEvent: want ErrNotFound, got %v", err)
	}
	if _, err := s.Events().GetByID(ctx, bob.ID, ev.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user GetEvent: want ErrNotFound, got %v", err)
	}

	// Paging: 30 events total, newest first, 25 + 5.
	for n := 0; n < 29; n++ {
		if _, err := s.Events().Create(ctx, alice.ID, &model.Event{ItemID: dune.ID, Comment: fmt.Sprintf("note %d", n)}); err != nil {
			t.Fatalf("CreateEvent %d: %v", n, err)
		}
	}
	if n, err := s.Events().CountByCollection(ctx, alice.ID, books.ID); err != nil || n != 30 {
		t.Fatalf("CountByCollection: n=%d err=%v", n, err)
	}
	page1, err := s.Events().ListByCollection(ctx, alice.ID, books.ID, 25, 0)
	if err != nil || len(page1) != 25 {
		t.Fatalf("ListByCollection page1: n=%d err=%v", len(page1), err)
	}
	page2, err := s.Events().ListByCollection(ctx, alice.ID, books.ID, 25, 25)
	if err != nil || len(page2) != 5 {
		t.Fatalf("ListByCollection page2: n=%d err=%v", len(page2), err)
	}
	for i := 1; i < len(page1); i++ {
		if page1[i].Created.After(page1[i-1].Created) {
			t.Fatalf("ListByCollection order: index %d newer than %d", i, i-1)
		}
	}
	// The very first event is the oldest, so it lands on the last page.
	if page2[len(page2)-1].ID != ev.ID {
		t.Fatalf("ListByCollection: oldest event not last, got id=%d want %d", page2[len(page2)-1].ID, ev.ID)
	}

	// Search: owner-scoped, case-insensitive substring on item name.
	hits, err := s.Events().Search(ctx, alice.ID, "un", 0)
	if err != nil || len(hits) != 30 {
		t.Fatalf("Search: n=%d err=%v", len(hits), err)
	}
	if hits, err := s.Events().Search(ctx, alice.ID, "", 0); err != nil || len(hits) != 0 {
		t.Fatalf("Search empty query: n=%d err=%v", len(hits), err)
	}
	if hits, err := s.Events().Search(ctx, bob.ID, "dune", 0); err != nil || len(hits) != 0 {
		t.Fatalf("Search other owner: n=%d err=%v", len(hits), err)
	}

	// Event delete is owner-scoped.
	if err := s.Events().Delete(ctx, bob.ID, ev.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user DeleteEvent: want ErrNotFound, got %v", err)
	}
	if err := s.Events().Delete(ctx, alice.ID, ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	// Rename keeps identity and survives a same-name rename at the storage
	// layer (the row being updated is the one holding the unique slot).
	if got, err := s.Collections().Rename(ctx, alice.ID, books.ID, "Books", "books"); err != nil || got.ID != books.ID {
		t.Fatalf("Rename same name: got=%v err=%v", got, err)
	}
	if got, err := s.Collections().Rename(ctx, alice.ID, books.ID, "Novels", "novels"); err != nil || got.Name != "Novels" || got.Slug != "novels" {
		t.Fatalf("Rename: got=%v err=%v", got, err)
	}
	if _, err := s.Collections().Rename(ctx, alice.ID, books.ID, "Albums", "albums"); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("Rename onto existing name: want ErrConflict, got %v", err)
	}
	if _, err := s.Collections().Rename(ctx, bob.ID, books.ID, "Taken", "taken"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user Rename: want ErrNotFound, got %v", err)
	}

	// Item delete cascades its events.
	ev2, err := s.Events().Create(ctx, alice.ID, &model.Event{ItemID: dune.ID, Comment: "finished"})
	if err != nil {
		t.Fatalf("CreateEvent before item delete: %v", err)
	}
	if err := s.Items().Delete(ctx, alice.ID, dune.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := s.Events().GetByID(ctx, alice.ID, ev2.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("event survived item delete: %v", err)
	}

	// Collection delete cascades items and events.
	it2, err := s.Items().Create(ctx, alice.ID, &model.Item{CollectionID: books.ID, Name: "Solaris"})
	if err != nil {
		t.Fatalf("CreateItem before collection delete: %v", err)
	}
	ev3, err := s.Events().Create(ctx, alice.ID, &model.Event{ItemID: it2.ID, Comment: "shelved"})
	if err != nil {
		t.Fatalf("CreateEvent before collection delete: %v", err)
	}
	if err := s.Collections().Delete(ctx, alice.ID, books.ID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := s.Items().GetByID(ctx, alice.ID, it2.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("item survived collection delete: %v", err)
	}
	if _, err := s.Events().GetByID(ctx, alice.ID, ev3.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("event survived collection delete: %v", err)
	}

	// User delete cascades everything.
	if err := s.Users().Delete(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if lst, err := s.Collections().ListByOwner(ctx, alice.ID); err != nil || len(lst) != 0 {
		t.Fatalf("collections survived user delete: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Users().GetByID(ctx, alice.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser after delete: want ErrNotFound, got %v", err)
	}
}
