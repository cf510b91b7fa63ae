package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"calview/internal/calendar"
)

const (
	cellWidth  = 14
	cellHeight = calendar.MaxCellEvents + 2
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Width(cellWidth).Foreground(lipgloss.Color("241")).Bold(true)
	cellStyle    = lipgloss.NewStyle().Width(cellWidth).Height(cellHeight).MaxHeight(cellHeight)
	outsideStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	todayStyle   = lipgloss.NewStyle().Underline(true).Bold(true)
	selectStyle  = lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0"))
	moreStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

// Terminal draws the month as a 7-column grid, one line per visible event.
func Terminal(m calendar.Month) string {
	var rows []string
	rows = append(rows, titleStyle.Render(m.Title), "")

	headers := make([]string, 0, 7)
	for _, h := range calendar.WeekdayHeaders {
		headers = append(headers, headerStyle.Render(h))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, headers...))

	for _, week := range m.Weeks() {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, cellStyle.Render(terminalCell(c)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func terminalCell(c calendar.Cell) string {
	num := strconv.Itoa(c.Date.Day())
	switch {
	case c.Selected:
		num = selectStyle.Render(num)
	case c.Today:
		num = todayStyle.Render(num)
	case !c.InMonth:
		num = outsideStyle.Render(num)
	}

	lines := []string{num}
	for _, ev := range c.Visible {
		style := lipgloss.NewStyle()
		if hexColor.MatchString(ev.Color) {
			style = style.Foreground(lipgloss.Color(ev.Color))
		}
		lines = append(lines, style.Render(truncate(ev.Title, cellWidth-1)))
	}
	if c.More > 0 {
		lines = append(lines, moreStyle.Render("+"+strconv.Itoa(c.More)+" more"))
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
