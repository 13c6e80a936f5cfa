package planner

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DateKey is the canonical YYYY-MM-DD form of a calendar day. It is the only
// key used for date-scoped collections and sorts lexicographically in date order.
type DateKey string

// KeyOf reads the local calendar fields of t. No timezone conversion is done;
// callers pass dates already in the calendar they mean.
func KeyOf(t time.Time) DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// ParseDateKey validates s and returns its canonical key.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.ParseInLocation(dateKeyLayout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", ErrValidation, s)
	}
	return KeyOf(t), nil
}

func (k DateKey) String() string { return string(k) }

// Valid reports whether k is a well-formed calendar day.
func (k DateKey) Valid() bool {
	_, err := time.ParseInLocation(dateKeyLayout, string(k), time.Local)
	return err == nil
}

// Time returns local midnight of k, or the zero time if k is malformed.
func (k DateKey) Time() time.Time {
	t, err := time.ParseInLocation(dateKeyLayout, string(k), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k DateKey) AddDays(n int) DateKey {
	return KeyOf(AddDays(k.Time(), n))
}

// Between is an inclusive range check on ISO-ordered keys.
func (k DateKey) Between(start, end DateKey) bool {
	return k >= start && k <= end
}
