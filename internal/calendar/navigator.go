package calendar

import (
	"time"

	"calview/internal/dateutil"
	"calview/internal/model"
)

// Navigator tracks which period the calendar shows and which day, if any,
// the user selected.
type Navigator struct {
	Current  time.Time
	View     model.ViewMode
	Selected *time.Time

	now func() time.Time
}

// NewNavigator starts at initial in the given view. A nil clock means
// time.Now.
func NewNavigator(initial time.Time, view model.ViewMode, clock func() time.Time) *Navigator {
	if clock == nil {
		clock = time.Now
	}
	if view == "" {
		view = model.ViewMonth
	}
	return &Navigator{Current: initial, View: view, now: clock}
}

func (n *Navigator) NextMonth() { n.Current = dateutil.AddMonths(n.Current, 1) }
func (n *Navigator) PrevMonth() { n.Current = dateutil.AddMonths(n.Current, -1) }
func (n *Navigator) NextWeek()  { n.Current = dateutil.AddDays(n.Current, 7) }
func (n *Navigator) PrevWeek()  { n.Current = dateutil.AddDays(n.Current, -7) }

// Next advances one period of the active view.
func (n *Navigator) Next() {
	if n.View == model.ViewWeek {
		n.NextWeek()
		return
	}
	n.NextMonth()
}

// Prev steps back one period of the active view.
func (n *Navigator) Prev() {
	if n.View == model.ViewWeek {
		n.PrevWeek()
		return
	}
	n.PrevMonth()
}

func (n *Navigator) Today() { n.Current = n.now() }

func (n *Navigator) SetView(v model.ViewMode) { n.View = v }

func (n *Navigator) Select(t time.Time) { n.Selected = &t }

func (n *Navigator) ClearSelection() { n.Selected = nil }

// Title is the header label for the active view.
func (n *Navigator) Title() string {
	if n.View == model.ViewWeek {
		return dateutil.Format(n.Current, "MMM d, yyyy")
	}
	return dateutil.Format(n.Current, "MMMM yyyy")
}
