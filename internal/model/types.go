package model

import "time"

// User is an account. Users own collections; deleting a user removes
// everything reachable through the ownership chain.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Created      time.Time `json:"created"`
}

// Collection groups items under one owner. The slug is derived from the
// name and only makes URLs readable; lookups always go by ID.
type Collection struct {
	ID      int64     `json:"id"`
	OwnerID int64     `json:"ownerId"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Created time.Time `json:"created"`
}

// Item belongs to exactly one collection.
type Item struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collectionId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Created      time.Time `json:"created"`
}

// Event is a timestamped comment against an item. Events are immutable:
// they are created and deleted, never updated.
type Event struct {
	ID      int64     `json:"id"`
	ItemID  int64     `json:"itemId"`
	Comment string    `json:"comment,omitempty"`
	Created time.Time `json:"created"`

	// ItemName is joined from the parent item for display and search
	// results; it is never written back.
	ItemName string `json:"itemName,omitempty"`
}
