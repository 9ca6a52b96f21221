// Package forms holds the validation layer: each form is a plain command
// struct with a Validate method returning field-level error codes. Handlers
// re-render the submitted form with these codes on failure; the codes are
// stable identifiers, the templates own the human wording.
package forms

// Field error codes.
const (
	ErrRequired         = "required"
	ErrTooLong          = "too_long"
	ErrCollectionExists = "collection_exists"
	ErrItemExists       = "item_exists"
)

// MaxNameLen bounds names and comments. Matches the column widths the UI
// was originally designed around.
const MaxNameLen = 255

// FieldErrors maps a field name to an error code.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool   { return e[field] != "" }
func (e FieldErrors) Get(field string) string { return e[field] }

// Message translates an error code into display text.
func Message(code string) string {
	switch code {
	case ErrRequired:
		return "This field is required."
	case ErrTooLong:
		return "This value is too long."
	case ErrCollectionExists:
		return "You already have a collection with this name."
	case ErrItemExists:
		return "This collection already has an item with this name."
	default:
		return "Invalid value."
	}
}
