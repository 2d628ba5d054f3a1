package scheduleservice

import (
	"fmt"
	"strings"
	"time"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

const isoDateLayout = "2006-01-02"

// ParseMatchDate accepts "January 2, 2006", "2006-01-02" or a natural
// language date ("next thursday") relative to now in loc. The result is
// midnight of that day in loc.
func ParseMatchDate(input string, loc *time.Location, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidMatchDate)
	}
	for _, layout := range []string{scheduledomain.DateLayout, isoDateLayout} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)

	r, err := w.Parse(input, now.In(loc))
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMatchDate, input)
	}
	y, m, d := r.Time.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// FormatMatchDate renders a date in the canonical match date layout.
func FormatMatchDate(t time.Time) string {
	return t.Format(scheduledomain.DateLayout)
}
