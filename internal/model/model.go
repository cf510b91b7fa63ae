package model

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is a titled time interval shown on the calendar.
//
// Start < End is expected but not enforced here; the form layer and the
// ICS importer refuse inverted intervals before they reach the collection.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color,omitempty"`
	Category    string    `json:"category,omitempty"`

	// Source is the ICS subscription ID this event was imported from.
	// Empty for events created locally.
	Source string `json:"source,omitempty"`
}

// EventPatch is a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Color       *string    `json:"color,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

// Apply returns a copy of ev with the patch merged in.
func (p EventPatch) Apply(ev CalendarEvent) CalendarEvent {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.Color != nil {
		ev.Color = *p.Color
	}
	if p.Category != nil {
		ev.Category = *p.Category
	}
	return ev
}

// PatchFrom builds a patch that overwrites every user-editable field.
func PatchFrom(ev CalendarEvent) EventPatch {
	return EventPatch{
		Title:       &ev.Title,
		Description: &ev.Description,
		Start:       &ev.Start,
		End:         &ev.End,
		Color:       &ev.Color,
		Category:    &ev.Category,
	}
}

// ViewMode selects the grid used for rendering.
type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
)

// ParseViewMode accepts "month" or "week" (case-insensitive).
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}
