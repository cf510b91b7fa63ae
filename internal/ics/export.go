package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"calview/internal/model"
)

// ProductID identifies calview as the producer of exported calendars.
const ProductID = "-//calview//calendar export//EN"

// Export serializes events as a published VCALENDAR. Times are written in
// UTC; imported events keep their namespaced IDs as UIDs.
func Export(events []model.CalendarEvent, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, ev.Category)
		}
		if ev.Color != "" {
			ve.SetProperty(ical.ComponentProperty("COLOR"), ev.Color)
		}
	}
	return cal.Serialize()
}
