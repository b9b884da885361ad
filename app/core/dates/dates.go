// Package dates turns free-text deadline phrases into absolute timestamps.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/olebedev/when/rules/ru"
)

const (
	// NoDeadline is what FormatDeadline returns for a missing timestamp.
	NoDeadline = "Не указан"
	// BadDeadline is returned when a timestamp cannot be rendered.
	BadDeadline = "Неверная дата"

	defaultHour = 18
)

var (
	todayAtRe    = regexp.MustCompile(`сегодня в (\d{1,2}):(\d{2})`)
	tomorrowAtRe = regexp.MustCompile(`завтра в (\d{1,2}):(\d{2})`)

	parser = newParser()
)

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(ru.All...)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Resolve parses a natural-language deadline phrase relative to now.
// Canonical Russian phrases are matched by exact equality after
// trim+lowercase; then the "сегодня в H:MM"/"завтра в H:MM" patterns;
// then the general grammar, which prefers future dates for ambiguous
// phrases like bare weekday names. The "сегодня" phrase always targets
// 18:00 even when that time has already passed; the caller is expected
// to run IsPast separately.
func Resolve(input string, now time.Time) (time.Time, bool) {
	clean := strings.ToLower(strings.TrimSpace(input))
	if clean == "" {
		return time.Time{}, false
	}

	switch clean {
	case "сегодня":
		return at(now, 0, defaultHour, 0), true
	case "завтра", "через день":
		return at(now, 1, defaultHour, 0), true
	case "через час":
		return hoursFromNow(now, 1), true
	case "через 2 часа":
		return hoursFromNow(now, 2), true
	case "через 3 часа":
		return hoursFromNow(now, 3), true
	case "через неделю":
		return at(now, 7, defaultHour, 0), true
	}

	if m := todayAtRe.FindStringSubmatch(clean); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return at(now, 0, hour, minute), true
	}
	if m := tomorrowAtRe.FindStringSubmatch(clean); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return at(now, 1, hour, minute), true
	}

	return resolveFreeForm(input, now)
}

// resolveFreeForm runs the grammar parser; only the first recognized
// span is used and any parser panic counts as a resolution failure.
func resolveFreeForm(input string, now time.Time) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	r, err := parser.Parse(input, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

// IsPast reports whether t is strictly before now. The zero value is
// treated as "no deadline" and is never past.
func IsPast(t time.Time, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Before(now)
}

// QuickOption is one precomputed deadline choice for quick-pick buttons.
type QuickOption struct {
	Label string
	When  time.Time
}

// QuickOptions returns the fixed list of six quick-pick deadlines.
// Pure function of now.
func QuickOptions(now time.Time) []QuickOption {
	return []QuickOption{
		{Label: "Сегодня 18:00", When: at(now, 0, 18, 0)},
		{Label: "Сегодня 21:00", When: at(now, 0, 21, 0)},
		{Label: "Завтра 12:00", When: at(now, 1, 12, 0)},
		{Label: "Завтра 18:00", When: at(now, 1, 18, 0)},
		{Label: "Через 3 часа", When: hoursFromNow(now, 3)},
		{Label: "Через день", When: at(now, 1, 18, 0)},
	}
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDeadline renders a timestamp as a long-form Russian date,
// e.g. "2 октября 2024 г., 18:00". Missing and unrenderable values come
// back as placeholder text; callers can only tell the difference by
// content.
func FormatDeadline(t time.Time) string {
	if t.IsZero() {
		return NoDeadline
	}
	if t.Year() < 1970 || t.Year() > 9999 {
		return BadDeadline
	}
	return fmt.Sprintf("%d %s %d г., %02d:%02d",
		t.Day(), ruMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// at keeps the calendar date of now shifted by days and pins the clock.
func at(now time.Time, days, hour, minute int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+days, hour, minute, 0, 0, now.Location())
}

// hoursFromNow adds whole hours and zeroes seconds.
func hoursFromNow(now time.Time, hours int) time.Time {
	t := now.Add(time.Duration(hours) * time.Hour)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
