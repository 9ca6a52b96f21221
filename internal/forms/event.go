package forms

import "strings"

// EventForm validates an event comment. The comment is optional; an empty
// comment still records a timestamped event against the item.
type EventForm struct {
	Comment string
}

func (f *EventForm) Validate() FieldErrors {
	f.Comment = strings.TrimSpace(f.Comment)
	if len(f.Comment) > MaxNameLen {
		return FieldErrors{"comment": ErrTooLong}
	}
	return nil
}
