// Package render draws calendar views as HTML pages and terminal grids.
package render

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"calview/internal/calendar"
	"calview/internal/dateutil"
	"calview/internal/form"
	"calview/internal/model"
)

//go:embed templates/calendar.html
var templateFS embed.FS

// hourHeight is the pixel height of one hour row in the week view.
const hourHeight = 48

// headerOffset is the pixel height of a week column header.
const headerOffset = 24

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

var page = template.Must(template.New("calendar.html").Funcs(template.FuncMap{
	"color":  cssColor,
	"offset": func(minutes int) template.CSS { return pixels(headerOffset + minutes*hourHeight/60) },
	"span":   func(minutes int) template.CSS { return pixels(max(minutes*hourHeight/60, 12)) },
}).ParseFS(templateFS, "templates/calendar.html"))

// Page is everything the calendar template needs. Exactly one of Month or
// Week is used, according to View.
type Page struct {
	View    model.ViewMode
	Title   string
	Headers [7]string
	Month   calendar.Month
	Week    calendar.Week

	PrevURL  string
	NextURL  string
	TodayURL string
}

// NewPage builds the page for the navigator's current position. base is the
// path the navigation links point at, e.g. "/calendar".
func NewPage(nav *calendar.Navigator, now time.Time, events []model.CalendarEvent, base string) Page {
	p := Page{
		View:    nav.View,
		Title:   nav.Title(),
		Headers: calendar.WeekdayHeaders,
	}
	if nav.View == model.ViewWeek {
		p.Week = calendar.BuildWeek(nav.Current, now, events)
	} else {
		p.Month = calendar.BuildMonth(nav.Current, nav.Selected, now, events)
	}

	link := func(t time.Time) string {
		q := url.Values{}
		q.Set("mode", string(nav.View))
		q.Set("date", dateutil.Format(t, "yyyy-MM-dd"))
		return base + "?" + q.Encode()
	}
	prev, next := *nav, *nav
	prev.Prev()
	next.Next()
	p.PrevURL = link(prev.Current)
	p.NextURL = link(next.Current)
	p.TodayURL = link(now)
	return p
}

// HTML writes the page. The root element carries data-ready="true" so
// headless captures can wait for it.
func HTML(w io.Writer, p Page) error {
	return page.Execute(w, p)
}

func cssColor(c string) template.CSS {
	if !hexColor.MatchString(c) {
		c = form.DefaultColor
	}
	return template.CSS(c)
}

func pixels(n int) template.CSS {
	return template.CSS(strconv.Itoa(n) + "px")
}
