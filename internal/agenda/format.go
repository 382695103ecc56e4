package agenda

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// French display names; time.Weekday and time.Month are English-only.
var frenchDays = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDateTime renders an instant the way the agenda shows it:
// "jeudi 5 juin 2024 à 10:00". Midnight (the default for date-only cells)
// renders without the time part. A zero instant renders as the
// "Non spécifié" placeholder.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return PlaceholderNone
	}
	s := formatFrenchDay(t)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return s
	}
	return fmt.Sprintf("%s à %02d:%02d", s, t.Hour(), t.Minute())
}

func formatFrenchDay(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d",
		frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
