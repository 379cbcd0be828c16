package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// days between 0001-01-01 and 1970-01-01
const unixEpochOrdinal = 719162

// Date is a calendar day without time-of-day or zone. Two dates are equal
// when year, month and day match, regardless of where they were resolved.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the way time.Date does,
// so NewDate(2024, 3, 0) is the last day of February.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateIn resolves an instant to the calendar day observed in loc.
func DateIn(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(t.In(loc))
}

func DateFromOrdinal(n int) Date {
	return DateOf(time.Unix(int64(n-unixEpochOrdinal)*86400, 0).UTC())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, s)
	}
	if t.Year() < 1 {
		return Date{}, fmt.Errorf("%w: invalid date %q, year out of range", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Ordinal is the number of days since 0001-01-01, so consecutive calendar
// days always differ by exactly one.
func (d Date) Ordinal() int {
	return int(d.Time().Unix()/86400) + unixEpochOrdinal
}

func (d Date) AddDays(n int) Date {
	return DateFromOrdinal(d.Ordinal() + n)
}

func (d Date) AddMonths(n int) Date {
	return NewDate(d.Year, d.Month+time.Month(n), d.Day)
}

func (d Date) AddYears(n int) Date {
	return NewDate(d.Year+n, d.Month, d.Day)
}

func (d Date) DaysSince(other Date) int {
	return d.Ordinal() - other.Ordinal()
}

func (d Date) Before(other Date) bool {
	return d.Ordinal() < other.Ordinal()
}

func (d Date) After(other Date) bool {
	return d.Ordinal() > other.Ordinal()
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

func (d Date) LastOfMonth() Date {
	return NewDate(d.Year, d.Month+1, 0)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as a plain YYYY-MM-DD literal, never as an instant.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(firstDatePart(v)))
	case []byte:
		return d.UnmarshalText([]byte(firstDatePart(string(v))))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// postgres may render a date column as a full timestamp literal
func firstDatePart(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
