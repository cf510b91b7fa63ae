package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// QuickAddDuration is the length given to events created from free text.
const QuickAddDuration = time.Hour

// ErrNoDate is returned when free text holds no recognizable date.
var ErrNoDate = errors.New("no date or time found")

var (
	parser     *when.Parser
	parserOnce sync.Once
)

func dateParser() *when.Parser {
	parserOnce.Do(func() {
		parser = when.New(nil)
		parser.Add(en.All...)
		parser.Add(common.All...)
	})
	return parser
}

// QuickAdd turns text like "Dentist tomorrow at 3pm" into form data. The
// date phrase is cut out of the title, the event lasts QuickAddDuration.
// The result still has to pass Validate.
func QuickAdd(text string, now time.Time) (Data, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Data{}, fmt.Errorf("quick add: %w", ErrNoDate)
	}

	r, err := dateParser().Parse(text, now)
	if err != nil {
		return Data{}, fmt.Errorf("quick add: %w", err)
	}
	if r == nil {
		return Data{}, fmt.Errorf("quick add %q: %w", text, ErrNoDate)
	}

	title := text
	if r.Index >= 0 && r.Index+len(r.Text) <= len(text) {
		title = text[:r.Index] + " " + text[r.Index+len(r.Text):]
	}
	title = strings.Join(strings.Fields(title), " ")

	start := r.Time.In(now.Location())
	d := Data{
		Title: title,
		Start: start,
		End:   start.Add(QuickAddDuration),
		Color: DefaultColor,
	}
	return d, nil
}
