package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
)

// Row is one spreadsheet line, keyed by trimmed header label. Missing
// columns simply have no entry; Get returns "" for them so downstream
// code never needs to check presence.
type Row map[string]string

// Get returns the cell under the given column label, or "" when the
// column is absent from the sheet.
func (r Row) Get(column string) string {
	return r[column]
}

// ParseRows parses a published-CSV payload into rows keyed by the header
// labels of the first record.
//
//   - The header row is required; an empty payload is an error.
//   - Records shorter or longer than the header are tolerated (published
//     sheets pad trailing empty cells inconsistently); extra cells are
//     dropped, missing ones read as "".
//   - Fully empty records are skipped.
//   - Structural CSV errors (unbalanced quotes etc.) are fatal for the
//     whole payload, matching the tokenizer contract.
func ParseRows(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv parse: missing header row")
	}

	header := make([]string, len(records[0]))
	for i, label := range records[0] {
		header[i] = strings.TrimSpace(label)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if recordEmpty(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, label := range header {
			if label == "" {
				continue
			}
			if i < len(rec) {
				row[label] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	appLog.Debug("sheet parse completed", "row_count", len(rows))
	return rows, nil
}

func recordEmpty(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
