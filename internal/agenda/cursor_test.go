package agenda

import (
	"testing"
	"time"
)

func TestCursor_NextWrapsDecember(t *testing.T) {
	c := Cursor{Year: 2024, Month: time.December}.Next()
	if c != (Cursor{Year: 2025, Month: time.January}) {
		t.Errorf("December.Next() = %+v, want January 2025", c)
	}

	c = Cursor{Year: 2024, Month: time.June}.Next()
	if c != (Cursor{Year: 2024, Month: time.July}) {
		t.Errorf("June.Next() = %+v, want July 2024", c)
	}
}

func TestCursor_PrevWrapsJanuary(t *testing.T) {
	c := Cursor{Year: 2024, Month: time.January}.Prev()
	if c != (Cursor{Year: 2023, Month: time.December}) {
		t.Errorf("January.Prev() = %+v, want December 2023", c)
	}

	c = Cursor{Year: 2024, Month: time.June}.Prev()
	if c != (Cursor{Year: 2024, Month: time.May}) {
		t.Errorf("June.Prev() = %+v, want May 2024", c)
	}
}

// A full year of Next then a full year of Prev returns to the start.
func TestCursor_RoundTrip(t *testing.T) {
	start := Cursor{Year: 2024, Month: time.March}

	c := start
	for i := 0; i < 12; i++ {
		c = c.Next()
	}
	if c != (Cursor{Year: 2025, Month: time.March}) {
		t.Errorf("12×Next = %+v, want March 2025", c)
	}
	for i := 0; i < 12; i++ {
		c = c.Prev()
	}
	if c != start {
		t.Errorf("12×Next then 12×Prev = %+v, want %+v", c, start)
	}
}

func TestCursor_Contains(t *testing.T) {
	c := Cursor{Year: 2024, Month: time.June}

	if !c.Contains(time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)) {
		t.Error("end of June 2024 should be contained")
	}
	if c.Contains(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("July must not be contained")
	}
	if c.Contains(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("June of another year must not be contained")
	}
	if c.Contains(time.Time{}) {
		t.Error("the zero instant must never match a month")
	}
}

func TestCursor_Label(t *testing.T) {
	cases := []struct {
		cursor Cursor
		want   string
	}{
		{Cursor{Year: 2024, Month: time.June}, "Juin 2024"},
		{Cursor{Year: 2025, Month: time.August}, "Août 2025"},
		{Cursor{Year: 2023, Month: time.December}, "Décembre 2023"},
	}

	for _, tc := range cases {
		if got := tc.cursor.Label(); got != tc.want {
			t.Errorf("Label(%+v) = %q, want %q", tc.cursor, got, tc.want)
		}
	}
}

func TestCursorFor(t *testing.T) {
	c := CursorFor(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC))
	if c != (Cursor{Year: 2024, Month: time.June}) {
		t.Errorf("CursorFor = %+v, want June 2024", c)
	}
}

func TestFormatDateTime(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"absent", time.Time{}, PlaceholderNone},
		{"midnight omits time", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), "mercredi 5 juin 2024"},
		{"with time", time.Date(2024, 6, 5, 9, 5, 0, 0, time.UTC), "mercredi 5 juin 2024 à 09:05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDateTime(tc.in); got != tc.want {
				t.Errorf("FormatDateTime = %q, want %q", got, tc.want)
			}
		})
	}
}
