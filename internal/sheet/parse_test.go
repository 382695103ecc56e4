package sheet

import (
	"strings"
	"testing"
)

func TestParseRows_HeaderMapping(t *testing.T) {
	csv := "Titre,Début,VILLE\n" +
		"Concert,05/06/2024,Albi\n" +
		"Expo,06/06/2024,Gaillac\n"

	rows, err := ParseRows([]byte(csv))
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Get("Titre") != "Concert" || rows[0].Get("Début") != "05/06/2024" {
		t.Errorf("row 0 = %v, header mapping broken", rows[0])
	}
	if rows[1].Get("VILLE") != "Gaillac" {
		t.Errorf("row 1 VILLE = %q, want Gaillac", rows[1].Get("VILLE"))
	}
}

func TestParseRows_MissingColumnReadsEmpty(t *testing.T) {
	rows, err := ParseRows([]byte("Titre\nConcert\n"))
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if got := rows[0].Get("Description"); got != "" {
		t.Errorf("absent column = %q, want empty string", got)
	}
}

func TestParseRows_ShortAndLongRecords(t *testing.T) {
	csv := "Titre,Début,VILLE\n" +
		"Concert\n" +
		"Expo,06/06/2024,Gaillac,extra,cells\n"

	rows, err := ParseRows([]byte(csv))
	if err != nil {
		t.Fatalf("ParseRows should tolerate ragged records: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Get("Début") != "" {
		t.Errorf("short record should read missing cells as empty, got %q", rows[0].Get("Début"))
	}
	if rows[1].Get("VILLE") != "Gaillac" {
		t.Errorf("long record mapping broken: %v", rows[1])
	}
}

func TestParseRows_SkipsEmptyRecords(t *testing.T) {
	csv := "Titre,VILLE\n" +
		"Concert,Albi\n" +
		",\n" +
		"Expo,Gaillac\n"

	rows, err := ParseRows([]byte(csv))
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2 (blank record skipped)", len(rows))
	}
}

func TestParseRows_EmptyPayloadIsError(t *testing.T) {
	if _, err := ParseRows(nil); err == nil {
		t.Error("empty payload should be a parse error")
	}
}

func TestParseRows_StructuralErrorIsFatal(t *testing.T) {
	csv := "Titre,VILLE\n" +
		"\"unterminated,Albi\n"

	_, err := ParseRows([]byte(csv))
	if err == nil {
		t.Fatal("malformed CSV should fail the whole payload")
	}
	if !strings.Contains(err.Error(), "csv parse") {
		t.Errorf("error %q should be wrapped as a csv parse failure", err)
	}
}

func TestParseLookup(t *testing.T) {
	csv := "Emails,Désignation\n" +
		"Marie@Example.ORG,Marie D.\n" +
		"paul@example.org,Paul R.\n" +
		",Sans adresse\n" +
		"vide@example.org,\n"

	names := ParseLookup([]byte(csv))
	if len(names) != 2 {
		t.Fatalf("got %d entries, want 2", len(names))
	}
	if names["marie@example.org"] != "Marie D." {
		t.Errorf("emails must be lowercased keys, got %v", names)
	}
	if names["paul@example.org"] != "Paul R." {
		t.Errorf("missing entry for paul: %v", names)
	}
}

func TestParseLookup_MalformedDegradesToEmpty(t *testing.T) {
	names := ParseLookup([]byte("\"broken\nrow,"))
	if names == nil {
		t.Fatal("ParseLookup must return a usable map, not nil")
	}
	if len(names) != 0 {
		t.Errorf("malformed lookup = %v, want empty map", names)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://docs.google.com/spreadsheets/d/e/TOKEN/pub?output=csv")
	if strings.Contains(got, "TOKEN") {
		t.Errorf("redactURL leaked the publication token: %q", got)
	}
	if !strings.HasPrefix(got, "https://docs.google.com") {
		t.Errorf("redactURL should keep the host, got %q", got)
	}
}
