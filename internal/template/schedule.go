package template

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSchedule translates an auto-load schedule string into a human-readable
// Russian phrase. It recognizes simple keywords, "every N unit" phrases and
// 5-field cron expressions; anything else is returned verbatim. The empty
// string means no schedule is configured and yields "".
//
// The function is purely presentational: the stored schedule value is never
// changed by it, and it never fails.
func FormatSchedule(raw string) string {
	return formatSchedule(raw, false)
}

// FormatScheduleDetailed is the editor variant of FormatSchedule: the keyword
// phrases carry the fixed execution time so the operator sees when the load
// will actually run.
func FormatScheduleDetailed(raw string) string {
	return formatSchedule(raw, true)
}

func formatSchedule(raw string, detailed bool) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	switch s {
	case "daily", "day":
		if detailed {
			return "один раз в сутки (в 2:00)"
		}
		return "один раз в сутки"
	case "hourly", "hour":
		return "один раз в час"
	case "weekly", "week":
		if detailed {
			return "один раз в неделю (понедельник в 2:00)"
		}
		return "один раз в неделю"
	}

	fields := strings.Fields(s)

	if len(fields) == 3 && fields[0] == "every" {
		if out, ok := formatEvery(fields[1], fields[2]); ok {
			return out
		}
		return raw
	}

	if len(fields) == 5 {
		if out, ok := formatCron(fields); ok {
			return out
		}
		return raw
	}

	return raw
}

// formatEvery handles "every N hours" / "every N minutes" in English or
// Russian. The interval is compared numerically, so "01" collapses to the
// singular phrase just like "1".
func formatEvery(interval, unit string) (string, bool) {
	n, err := strconv.Atoi(interval)
	if err != nil {
		return "", false
	}

	switch {
	case strings.Contains(unit, "hour"), strings.Contains(unit, "час"):
		if n == 1 {
			return "один раз в час", true
		}
		return fmt.Sprintf("каждые %d часа", n), true
	case strings.Contains(unit, "minute"), strings.Contains(unit, "мин"):
		if n == 1 {
			return "каждую минуту", true
		}
		return fmt.Sprintf("каждые %d минуты", n), true
	}

	return "", false
}

// formatCron handles the small set of cron shapes the schedule editor
// produces: hourly, daily at a fixed time and every-N-hours. Everything else
// passes through verbatim.
func formatCron(fields []string) (string, bool) {
	minute, hour, day, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	if day != "*" || month != "*" || dow != "*" {
		return "", false
	}

	if minute == "0" && (hour == "*" || hour == "*/1") {
		return "один раз в час", true
	}

	if minute == "0" && strings.HasPrefix(hour, "*/") {
		n, err := strconv.Atoi(hour[2:])
		if err != nil {
			return "", false
		}
		if n == 1 {
			return "один раз в час", true
		}
		return fmt.Sprintf("каждые %d часа", n), true
	}

	if minute != "*" && hour != "*" {
		m, errM := strconv.Atoi(minute)
		h, errH := strconv.Atoi(hour)
		if errM != nil || errH != nil {
			return "", false
		}
		return fmt.Sprintf("один раз в сутки (%02d:%02d)", h, m), true
	}

	return "", false
}
