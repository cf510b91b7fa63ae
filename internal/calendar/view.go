package calendar

import (
	"time"

	"calview/internal/dateutil"
	"calview/internal/eventutil"
	"calview/internal/model"
)

// MaxCellEvents is how many events a month cell lists before "+N more".
const MaxCellEvents = 3

// WeekdayHeaders are the column titles of both views, Sunday first.
var WeekdayHeaders = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Cell is one day of the month grid.
type Cell struct {
	Date     time.Time             `json:"date"`
	InMonth  bool                  `json:"in_month"`
	Today    bool                  `json:"today"`
	Selected bool                  `json:"selected"`
	Events   []model.CalendarEvent `json:"events"`
	Visible  []model.CalendarEvent `json:"-"`
	More     int                   `json:"more"`
}

// Month is the 6x7 month view.
type Month struct {
	Title string `json:"title"`
	Cells []Cell `json:"cells"`
}

// Weeks splits the grid into rows of seven.
func (m Month) Weeks() [][]Cell {
	rows := make([][]Cell, 0, len(m.Cells)/7)
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		rows = append(rows, m.Cells[i:i+7])
	}
	return rows
}

// BuildMonth lays out the month containing current. selected may be nil.
func BuildMonth(current time.Time, selected *time.Time, now time.Time, events []model.CalendarEvent) Month {
	grid := dateutil.CalendarGrid(current)
	cells := make([]Cell, len(grid))
	for i, d := range grid {
		dayEvents := eventutil.SortByStart(eventutil.ForDay(events, d))
		c := Cell{
			Date:     d,
			InMonth:  d.Month() == current.Month(),
			Today:    dateutil.IsSameDay(d, now),
			Selected: selected != nil && dateutil.IsSameDay(d, *selected),
			Events:   dayEvents,
			Visible:  dayEvents,
		}
		if len(dayEvents) > MaxCellEvents {
			c.Visible = dayEvents[:MaxCellEvents]
			c.More = len(dayEvents) - MaxCellEvents
		}
		cells[i] = c
	}
	return Month{
		Title: dateutil.Format(current, "MMMM yyyy"),
		Cells: cells,
	}
}

// Block is an event positioned inside a week column. Offsets are minutes
// from the column's midnight.
type Block struct {
	Event     model.CalendarEvent `json:"event"`
	TopMin    int                 `json:"top_min"`
	HeightMin int                 `json:"height_min"`
	Label     string              `json:"label"`
}

// Column is one day of the week view.
type Column struct {
	Date   time.Time `json:"date"`
	Header string    `json:"header"`
	Today  bool      `json:"today"`
	Blocks []Block   `json:"blocks"`
}

// Week is the 7-column week view.
type Week struct {
	Title   string   `json:"title"`
	Hours   []string `json:"hours"`
	Columns []Column `json:"columns"`
}

// BuildWeek lays out the Sunday-first week containing current. Blocks are
// clamped to the day so multi-day events fill the columns they cross.
func BuildWeek(current time.Time, now time.Time, events []model.CalendarEvent) Week {
	days := dateutil.WeekDays(current)

	hours := make([]string, 0, 24)
	for _, slot := range dateutil.TimeSlots(current, 60) {
		hours = append(hours, dateutil.Format(slot, "HH:mm"))
	}

	cols := make([]Column, len(days))
	for i, d := range days {
		dayStart := d
		dayEnd := dateutil.AddDays(d, 1)

		col := Column{
			Date:   d,
			Header: dateutil.Format(d, "EEE d"),
			Today:  dateutil.IsSameDay(d, now),
			Blocks: make([]Block, 0),
		}
		for _, ev := range eventutil.SortByStart(eventutil.ForDay(events, d)) {
			start := ev.Start
			if start.Before(dayStart) {
				start = dayStart
			}
			end := ev.End
			if end.After(dayEnd) {
				end = dayEnd
			}
			top := int(start.Sub(dayStart).Minutes())
			height := int(end.Sub(start).Minutes())
			col.Blocks = append(col.Blocks, Block{
				Event:     ev,
				TopMin:    top,
				HeightMin: height,
				Label:     eventutil.TimeDisplay(ev),
			})
		}
		cols[i] = col
	}

	return Week{
		Title:   dateutil.Format(current, "MMM d, yyyy"),
		Hours:   hours,
		Columns: cols,
	}
}
