package agenda

import "time"

// Cursor is the month-view navigation state: one (year, month) pair. It
// is an explicit value passed through handlers and transitions, never a
// package global. Transitions are pure; the only bound is calendar
// wraparound.
type Cursor struct {
	Year  int
	Month time.Month
}

// CursorFor returns the cursor of the month containing t.
func CursorFor(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Next returns the cursor advanced one month, December wrapping into
// January of the following year.
func (c Cursor) Next() Cursor {
	if c.Month == time.December {
		return Cursor{Year: c.Year + 1, Month: time.January}
	}
	return Cursor{Year: c.Year, Month: c.Month + 1}
}

// Prev returns the cursor moved back one month, January wrapping into
// December of the preceding year.
func (c Cursor) Prev() Cursor {
	if c.Month == time.January {
		return Cursor{Year: c.Year - 1, Month: time.December}
	}
	return Cursor{Year: c.Year, Month: c.Month - 1}
}

// Contains reports whether a non-zero instant falls inside the cursor's
// month.
func (c Cursor) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == c.Year && t.Month() == c.Month
}

// Label renders the French month heading ("Juin 2024").
func (c Cursor) Label() string {
	return capitalize(frenchMonths[c.Month-1] + " " + itoa(c.Year))
}
