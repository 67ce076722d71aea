package blog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthNames = [13]string{
	"invalid",
	"January",
	"February",
	"March",
	"April",
	"May",
	"June",
	"July",
	"August",
	"September",
	"October",
	"November",
	"December",
}

// Date is the publication date written in an article header as M/D/YYYY.
// Day and year are not range checked.
type Date struct {
	Month uint8
	Day   uint8
	Year  uint16
}

// ParseDate parses a month/day/year token. Components after the year are
// ignored.
func ParseDate(token string) (Date, error) {
	parts := strings.Split(token, "/")
	if len(parts) < 3 {
		return Date{}, ErrInvalidDate
	}
	month, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || month < 1 || month > 12 {
		return Date{}, ErrInvalidDate
	}
	day, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	year, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Month: uint8(month), Day: uint8(day), Year: uint16(year)}, nil
}

// String formats the date as "January 5, 2021".
func (d Date) String() string {
	name := monthNames[0]
	if int(d.Month) < len(monthNames) {
		name = monthNames[d.Month]
	}
	return fmt.Sprintf("%s %d, %d", name, d.Day, d.Year)
}

// Time returns the date as midnight UTC. Out-of-range days roll over the
// way time.Date normalizes them.
func (d Date) Time() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// DateOf returns the calendar date of t in its location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Month: uint8(m), Day: uint8(d), Year: uint16(y)}
}

// Token formats the date the way headers write it, e.g. "1/5/2021".
func (d Date) Token() string {
	return fmt.Sprintf("%d/%d/%d", d.Month, d.Day, d.Year)
}
