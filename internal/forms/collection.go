package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"

	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// CollectionForm validates a collection create or rename.
type CollectionForm struct {
	Name string
}

// Normalize trims surrounding whitespace; the name itself keeps its case,
// uniqueness is checked case-insensitively.
func (f *CollectionForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
}

// Slug derives the URL slug from the validated name.
func (f *CollectionForm) Slug() string {
	return slug.Make(f.Name)
}

// Validate checks the form against one owner's collections. currentID is
// the collection being renamed, or zero on create: renaming a collection to
// its own current name must pass, while creating a second collection under
// an existing name must not.
func (f *CollectionForm) Validate(ctx context.Context, cols store.Collections, ownerID, currentID int64) (FieldErrors, error) {
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
	existing, err := cols.FindByName(ctx, ownerID, f.Name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	case existing.ID != currentID:
		errs["name"] = ErrCollectionExists
		return errs, nil
	}
	return nil, nil
}
