package store

import (
	"context"

	"github.com/stashlog/stashlog/internal/model"
)

// Store exposes persistence operations required by forms and handlers.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
//
// Every method that touches a collection, item or event is scoped by
// ownerID: rows reachable only through another user's collection behave as
// if they do not exist and produce model.ErrNotFound.
type Store interface {
	Users() Users
	Collections() Collections
	Items() Items
	Events() Events
	Ping(ctx context.Context) error
	Close() error
}

type Users interface {
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Delete removes the user and, by cascade, every collection, item and
	// event the user owns.
	Delete(ctx context.Context, id int64) error
}

type Collections interface {
	Create(ctx context.Context, c *model.Collection) (*model.Collection, error)
	GetByID(ctx context.Context, ownerID, id int64) (*model.Collection, error)
	// FindByName matches case-insensitively within one owner's collections.
	FindByName(ctx context.Context, ownerID int64, name string) (*model.Collection, error)
	// ListByOwner returns the owner's collections ordered by name.
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Collection, error)
	Rename(ctx context.Context, ownerID, id int64, name, slug string) (*model.Collection, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type Items interface {
	Create(ctx context.Context, ownerID int64, it *model.Item) (*model.Item, error)
	GetByID(ctx context.Context, ownerID, id int64) (*model.Item, error)
	// FindByName matches case-insensitively within one collection.
	FindByName(ctx context.Context, ownerID, collectionID int64, name string) (*model.Item, error)
	// ListByCollection returns the collection's items ordered by name.
	ListByCollection(ctx context.Context, ownerID, collectionID int64) ([]*model.Item, error)
	Update(ctx context.Context, ownerID int64, it *model.Item) (*model.Item, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type Events interface {
	Create(ctx context.Context, ownerID int64, e *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, ownerID, id int64) (*model.Event, error)
	// ListByCollection returns events for all items in the collection,
	// newest first, with ItemName populated.
	ListByCollection(ctx context.Context, ownerID, collectionID int64, limit, offset int) ([]*model.Event, error)
	CountByCollection(ctx context.Context, ownerID, collectionID int64) (int, error)
	// Search returns the owner's events whose item name contains query,
	// case-insensitively, newest first. An empty query matches nothing.
	Search(ctx context.Context, ownerID int64, query string, limit int) ([]*model.Event, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
