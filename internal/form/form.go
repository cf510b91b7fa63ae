// Package form validates event input before it reaches the collection.
// Validation is advisory: it reports per-field messages and blocks the
// submission, it never panics or partially applies changes.
package form

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"calview/internal/dateutil"
	"calview/internal/model"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500

	DefaultColor = "#0ea5e9"
)

// Field keys used in Errors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
)

// Data is the editable part of an event.
type Data struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
	Category    string    `json:"category"`
}

// Errors maps a field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

// NewData is a blank form for the given day: one day long, default color.
func NewData(selected time.Time) Data {
	return Data{
		Start: selected,
		End:   dateutil.AddDays(selected, 1),
		Color: DefaultColor,
	}
}

// FromEvent loads an existing event into the form.
func FromEvent(ev model.CalendarEvent) Data {
	return Data{
		Title:       ev.Title,
		Description: ev.Description,
		Start:       ev.Start,
		End:         ev.End,
		Color:       ev.Color,
		Category:    ev.Category,
	}
}

// ForDate picks what the editor opens with when a day is clicked: the first
// event (in collection order) starting that day, or a blank form. The
// returned ID is empty for a blank form.
func ForDate(events []model.CalendarEvent, selected time.Time) (Data, string) {
	for _, ev := range events {
		if dateutil.IsSameDay(ev.Start, selected) {
			return FromEvent(ev), ev.ID
		}
	}
	return NewData(selected), ""
}

// WithDefaults fills what an editor would have prefilled: start defaults
// to now, end to one day after start, color to DefaultColor.
func (d Data) WithDefaults(now time.Time) Data {
	if d.Start.IsZero() {
		d.Start = now
	}
	if d.End.IsZero() {
		d.End = dateutil.AddDays(d.Start, 1)
	}
	if d.Color == "" {
		d.Color = DefaultColor
	}
	return d
}

// Event converts the form into an event without an ID.
func (d Data) Event() model.CalendarEvent {
	return model.CalendarEvent{
		Title:       d.Title,
		Description: d.Description,
		Start:       d.Start,
		End:         d.End,
		Color:       d.Color,
		Category:    d.Category,
	}
}

// Validate returns nil when d can be submitted.
func Validate(d Data) Errors {
	errs := Errors{}

	title := textLen(d.Title)
	switch {
	case title == 0:
		errs[FieldTitle] = "Title is required"
	case title > MaxTitleLen:
		errs[FieldTitle] = "Title must be 100 characters or less"
	}
	if textLen(d.Description) > MaxDescriptionLen {
		errs[FieldDescription] = "Description must be 500 characters or less"
	}
	switch {
	case d.Start.IsZero():
		errs[FieldStartDate] = "Start date is required"
		if d.End.IsZero() {
			errs[FieldEndDate] = "End date is required"
		}
	case d.End.IsZero():
		errs[FieldEndDate] = "End date is required"
	case !d.End.After(d.Start):
		errs[FieldEndDate] = "End date must be after start date"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// textLen counts user-perceived characters: composed sequences are
// normalized first so "é" typed two ways counts the same.
func textLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// Target receives accepted submissions. *store.Store implements it.
type Target interface {
	Add(ev model.CalendarEvent) model.CalendarEvent
	Update(id string, patch model.EventPatch) (model.CalendarEvent, error)
}

// Submit validates d and either adds a new event (editingID empty) or
// overwrites the editable fields of editingID. On validation failure the
// target is not touched and the Errors value is returned as the error.
func Submit(t Target, d Data, editingID string) (model.CalendarEvent, error) {
	if errs := Validate(d); errs != nil {
		return model.CalendarEvent{}, errs
	}
	if editingID == "" {
		return t.Add(d.Event()), nil
	}
	return t.Update(editingID, model.PatchFrom(d.Event()))
}

// ValidatePatch checks a partial update against the event it applies to.
func ValidatePatch(current model.CalendarEvent, patch model.EventPatch) Errors {
	return Validate(FromEvent(patch.Apply(current)))
}
