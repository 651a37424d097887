package models

import (
	"math"
	"time"
)

// AttendancePercentage is round(present*100/registered), nil when nobody is registered.
func AttendancePercentage(present, registered int) *int {
	if registered <= 0 {
		return nil
	}
	pct := int(math.Round(float64(present) * 100 / float64(registered)))
	return &pct
}

// Average is the rounded mean of the non-nil values, 0 when there are none.
func Average(values []*int) int {
	var total, count int
	for _, v := range values {
		if v == nil {
			continue
		}
		total += *v
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

// WeekOfYear numbers weeks from January 1st, shifted by that day's weekday
// (Sunday = 0), never below 1.
func WeekOfYear(date time.Time) int {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	diff := date.Sub(start).Hours() / 24
	week := int(math.Ceil((diff + float64(start.Weekday()) + 1) / 7))
	if week < 1 {
		return 1
	}
	return week
}

// SameUTCMonth reports whether the YYYY-MM-DD date falls in now's UTC month.
func SameUTCMonth(isoDate string, now time.Time) bool {
	date, err := ParseDate(isoDate)
	if err != nil {
		return false
	}
	now = now.UTC()
	return date.Year() == now.Year() && date.Month() == now.Month()
}

// ISOWeekBounds returns the Monday and following Monday of now's ISO week in UTC.
func ISOWeekBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, time.UTC)
	return monday, monday.AddDate(0, 0, 7)
}

// ScheduleLabel renders "HH:MM • venue" from whichever parts are present.
func ScheduleLabel(scheduledTime, venue *string) *string {
	var label string
	switch {
	case scheduledTime == nil && venue == nil:
		return nil
	case scheduledTime == nil:
		label = "Venue " + *venue
	case venue == nil:
		label = *scheduledTime
	default:
		label = *scheduledTime + " • " + *venue
	}
	return &label
}

// DateLayout is the wire format of lecture dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}
