package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// clockHourRe pulls the hour (and optional minutes / meridiem) out of
// common schedule spellings: "6:00 AM", "7:00PM", "18:00", "6 am".
var clockHourRe = regexp.MustCompile(`(\d{1,2})(?::\d{2})?\s*(AM|PM)?`)

// hourUnknown is the sentinel returned when a schedule cell yields no hour.
const hourUnknown = -1

// parseClockHour extracts an hour of day (0-23) from a schedule cell.
// Returns hourUnknown for blanks, "N/A", and anything unrecognized.
func parseClockHour(value string) int {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" || value == "N/A" || value == "NA" {
		return hourUnknown
	}

	m := clockHourRe.FindStringSubmatch(value)
	if m == nil {
		return hourUnknown
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return hourUnknown
	}

	switch m[2] {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 {
		return hourUnknown
	}
	return hour
}

// OpenNow reports whether a facility is open at the given hour, as the 0/1
// feature encoding. It is deterministic and never fails: every parse
// failure degrades to open (fail-open), so bad schedule data can never
// exclude a facility from results.
//
//  1. "24/7" anywhere in either field means always open.
//  2. An unparseable opening or closing hour means open.
//  3. Equal opening and closing hours are a degenerate schedule, treated
//     as always open.
//  4. Same-day schedules are open for opening <= hour < closing; overnight
//     schedules (e.g. 20:00-04:00) wrap around midnight.
func OpenNow(opening, closing string, hour int) int {
	if strings.Contains(strings.ToUpper(opening), "24/7") ||
		strings.Contains(strings.ToUpper(closing), "24/7") {
		return 1
	}

	openHour := parseClockHour(opening)
	closeHour := parseClockHour(closing)
	if openHour == hourUnknown || closeHour == hourUnknown {
		return 1
	}
	if openHour == closeHour {
		return 1
	}

	if openHour < closeHour {
		if openHour <= hour && hour < closeHour {
			return 1
		}
		return 0
	}

	// Overnight wrap: open through midnight into the next morning.
	if hour >= openHour || hour < closeHour {
		return 1
	}
	return 0
}
