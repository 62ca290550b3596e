package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The sheet writes dates day-first with whatever separator the person typing
// preferred.
var dateLayouts = []string{"2/1/2006", "2-1-2006", "2.1.2006"}

// ParseDate parses a day/month/year date at midnight in loc. A trailing time
// part ("25/12/2024 00:00:00") is ignored.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// minutesPerDay is also a valid clock time: "24:00" closes a slot at
// midnight and atMinute rolls it over to the next day.
const minutesPerDay = 24 * 60

// clockTimes returns the minute-of-day of every H:MM / HH:MM in s, in order.
// Times past 24:00 or with minutes over 59 are not clock times.
func clockTimes(s string) []int {
	var out []int
	for _, m := range clockRe.FindAllStringSubmatch(s, -1) {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 || h*60+mm > minutesPerDay {
			continue
		}
		out = append(out, h*60+mm)
	}
	return out
}

// MinuteOfDay is the first clock time found in a time slot.
func MinuteOfDay(slot string) (int, bool) {
	ts := clockTimes(slot)
	if len(ts) == 0 {
		return 0, false
	}
	return ts[0], true
}

// parseSlot reads "HH:MM - HH:MM". A missing end means end == start.
func parseSlot(slot string) (start, end int, ok bool) {
	ts := clockTimes(slot)
	switch len(ts) {
	case 0:
		return 0, 0, false
	case 1:
		return ts[0], ts[0], true
	default:
		return ts[0], ts[1], true
	}
}

func atMinute(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, day.Location())
}
