package assistant

import (
	"strings"
	"time"
)

// Date handling rules:
//   - a bare date ("2025-03-01") means 08:00 local that day;
//   - a bare date used as a deadline means 23:59:59 that day;
//   - a todo created without any date gets today 21:00 so it stays
//     schedulable.

const (
	defaultTodoHour = 21
	bareDateHour    = 8
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04",
	"2006/01/02 15:04",
}

var bareDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
}

// parseDate interprets an extracted date string. Bare dates resolve to 08:00
// local; full instants are kept as stated. Returns nil for unparseable text.
func parseDate(s string, _ time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	for _, layout := range bareDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			at := time.Date(t.Year(), t.Month(), t.Day(), bareDateHour, 0, 0, 0, time.Local)
			return &at
		}
	}
	return nil
}

// parseDue is parseDate with deadline semantics: a bare date becomes the end
// of that day.
func parseDue(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range bareDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			at := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.Local)
			return &at
		}
	}
	return parseDate(s, now)
}

// defaultDate is today at 21:00 local.
func defaultDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), defaultTodoHour, 0, 0, 0, time.Local)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// startOfWeek returns Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the prior Monday
	}
	return startOfDay(t).AddDate(0, 0, 1-weekday)
}

// timeWindow is a half-open [Start, End) calendar window.
type timeWindow struct {
	Start time.Time
	End   time.Time
}

func (w timeWindow) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// resolveTimeRange maps a relative range expression to a calendar-boundary
// window and reports whether the window looks into the future (which
// defaults the status filter to pending).
func resolveTimeRange(expr string, now time.Time) (timeWindow, bool, bool) {
	today := startOfDay(now)

	switch strings.TrimSpace(expr) {
	case "今天", "今日", "today":
		return timeWindow{today, today.AddDate(0, 0, 1)}, true, true
	case "明天", "明日", "tomorrow":
		return timeWindow{today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)}, true, true
	case "后天", "後天":
		return timeWindow{today.AddDate(0, 0, 2), today.AddDate(0, 0, 3)}, true, true
	case "昨天", "yesterday":
		return timeWindow{today.AddDate(0, 0, -1), today}, false, true
	case "本周", "本週", "这周", "這週", "this week":
		monday := startOfWeek(now)
		return timeWindow{monday, monday.AddDate(0, 0, 7)}, true, true
	case "下周", "下週", "next week":
		monday := startOfWeek(now).AddDate(0, 0, 7)
		return timeWindow{monday, monday.AddDate(0, 0, 7)}, true, true
	case "上周", "上週", "last week":
		monday := startOfWeek(now).AddDate(0, 0, -7)
		return timeWindow{monday, monday.AddDate(0, 0, 7)}, false, true
	case "本月", "this month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		return timeWindow{first, first.AddDate(0, 1, 0)}, true, true
	}
	return timeWindow{}, false, false
}

// knownTimeRanges lists range expressions the query fallback can spot
// directly in the utterance, checked in order.
var knownTimeRanges = []string{
	"明天", "明日", "后天", "後天", "昨天", "今天", "今日",
	"本周", "本週", "这周", "這週", "下周", "下週", "上周", "上週", "本月",
}
