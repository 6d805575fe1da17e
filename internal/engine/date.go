package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-birthday-web/internal/config"
)

// ErrInvalidDate is matched by every *ParseError via errors.Is.
var ErrInvalidDate = errors.New(config.ErrDateParse)

// ParseError reports text or components that do not form a valid calendar date.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", config.ErrDateParse, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets callers test against ErrInvalidDate without unwrapping.
func (e *ParseError) Is(target error) bool { return target == ErrInvalidDate }

// CalendarDate is a (year, month, day) point on the proleptic Gregorian calendar.
// The zero value is not a valid date; build one with NewCalendarDate or ParseCalendarDate.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate validates the components and returns the date they name.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	input := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
	if year < config.MinYear || year > config.MaxYear {
		return CalendarDate{}, &ParseError{Input: input, Err: errors.New(config.ErrDateRange)}
	}

	// time.Date normalises out-of-range values (Feb 30 -> Mar 2), so a round-trip
	// mismatch means the components were not a real date.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, &ParseError{Input: input, Err: errors.New(config.ErrDateRange)}
	}
	return CalendarDate{Year: year, Month: month, Day: day}, nil
}

// ParseCalendarDate parses text in the strict YYYY-MM-DD layout.
func ParseCalendarDate(text string) (CalendarDate, error) {
	t, err := time.Parse(config.DateFormatISO, text)
	if err != nil {
		return CalendarDate{}, &ParseError{Input: text, Err: fmt.Errorf("%s: %w", config.ErrDateFormat, err)}
	}
	d, err := NewCalendarDate(t.Year(), t.Month(), t.Day())
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Input = text
		}
		return CalendarDate{}, err
	}
	return d, nil
}

// String renders the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of the date in loc.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AnniversaryIn returns midnight of the date's month/day in the given year.
// Feb 29 falls on Mar 1 when year is not a leap year.
func (d CalendarDate) AnniversaryIn(year int, loc *time.Location) time.Time {
	return time.Date(year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ComputeAge returns the number of completed years between the birth date and today.
// The components are not validated; only the (month, day) ordering matters.
func ComputeAge(birthYear, birthMonth, birthDay int, today time.Time) int {
	age := today.Year() - birthYear
	month := int(today.Month())
	if month < birthMonth || (month == birthMonth && today.Day() < birthDay) {
		age--
	}
	return age
}

// ComputeCountdown parses text and returns the inclusive number of days until
// the next anniversary of that date, relative to now.
func ComputeCountdown(text string, now time.Time) (int, error) {
	date, err := ParseCalendarDate(text)
	if err != nil {
		return 0, err
	}
	return Countdown(date, now), nil
}

// Countdown returns the whole days between now and the next anniversary, plus one.
// The anniversary is midnight, so later on the anniversary day itself it rolls to next year.
func Countdown(date CalendarDate, now time.Time) int {
	wallNow := wallClock(now)
	upcoming := date.AnniversaryIn(anniversaryYear(date, wallNow), time.UTC)
	return int(upcoming.Sub(wallNow)/(24*time.Hour)) + 1
}

// NextAnniversary returns midnight, in now's location, of the next anniversary of date.
// An anniversary at exactly now counts as upcoming.
func NextAnniversary(date CalendarDate, now time.Time) time.Time {
	return date.AnniversaryIn(anniversaryYear(date, wallClock(now)), now.Location())
}

func anniversaryYear(date CalendarDate, wallNow time.Time) int {
	year := wallNow.Year()
	if wallNow.After(date.AnniversaryIn(year, time.UTC)) {
		year++
	}
	return year
}

// wallClock reinterprets t's local wall time as UTC so day arithmetic ignores DST shifts.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}
