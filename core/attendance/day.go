package attendance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trezcool/darasa/core/user"
)

const (
	// DefaultDayKey is the fallback day when a selected date cannot be parsed.
	// Views recover locally with it instead of surfacing the error.
	DefaultDayKey = "1"

	dateLayout      = "2006-01-02"
	monthYearLayout = "2006-01"
)

// InvalidDateError reports an unparseable selected date.
type InvalidDateError struct {
	Value string
}

func (err *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q", err.Value)
}

// ResolveDayKey maps a selected ISO date (YYYY-MM-DD) to its day-of-month key.
func ResolveDayKey(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", &InvalidDateError{Value: date}
	}
	return strconv.Itoa(t.Day()), nil
}

// DayKeyOrDefault resolves the day key, falling back to DefaultDayKey on an
// invalid date.
func DayKeyOrDefault(date string) string {
	day, err := ResolveDayKey(date)
	if err != nil {
		return DefaultDayKey
	}
	return day
}

// MonthYear derives the persistence month key (YYYY-MM, the first seven
// characters of the ISO date). An unparseable date falls back to now's month.
func MonthYear(date string, now time.Time) string {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return now.Format(monthYearLayout)
	}
	return date[:7]
}

// DayInMonth maps a (month-year, day key) pair back to a concrete date.
func DayInMonth(monthYear, day string) (time.Time, error) {
	m, err := time.Parse(monthYearLayout, monthYear)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: monthYear}
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, &InvalidDateError{Value: monthYear + "-" + day}
	}
	return time.Date(m.Year(), m.Month(), d, 0, 0, 0, 0, m.Location()), nil
}

// IsEditable decides whether the selected date is mutable for the actor:
// admins and advisers may edit any date, the secretary only today (by full
// calendar-date equality, not day-of-month equality), students never.
func IsEditable(date string, today time.Time, actor user.Actor) bool {
	if actor.CanEditAnyDay() {
		return true
	}
	if !actor.IsSecretary() {
		return false
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := today.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
