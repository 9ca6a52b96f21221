package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// ItemForm validates an item create or update within one collection.
type ItemForm struct {
	Name        string
	Description string
}

func (f *ItemForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

// Validate checks the form against the collection's items. currentID is the
// item being updated, or zero on create; resubmitting an item's own name is
// a no-op, not a duplicate.
func (f *ItemForm) Validate(ctx context.Context, items store.Items, ownerID, collectionID, currentID int64) (FieldErrors, error) {
	f.Normalize()
	errs := FieldErrors{}
	if f.Name == "" {
		errs["name"] = ErrRequired
		return errs, nil
	}
	if len(f.Name) > MaxNameLen {
		errs["name"] = ErrTooLong
		return errs, nil
	}
	if len(f.Description) > MaxNameLen {
		errs["description"] = ErrTooLong
		return errs, nil
	}
	existing, err := items.FindByName(ctx, ownerID, collectionID, f.Name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	case existing.ID != currentID:
		errs["name"] = ErrItemExists
		return errs, nil
	}
	return nil, nil
}
