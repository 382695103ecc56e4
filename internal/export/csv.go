package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/agenda"
)

// csvHeader mirrors the source sheet's columns so an export can be pasted
// back into a spreadsheet.
var csvHeader = []string{
	agenda.ColTitre,
	agenda.ColDebut,
	agenda.ColFin,
	agenda.ColVille,
	agenda.ColLieu,
	agenda.ColDescription,
	agenda.ColCreation,
	agenda.ColDesignation,
}

// WriteCSV writes the events as CSV in the sheet's own column layout and
// date format. Absent instants export as empty cells.
func WriteCSV(w io.Writer, events []agenda.Event) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{
			ev.Title,
			frenchCell(ev.Start),
			frenchCell(ev.End),
			ev.City,
			ev.Location,
			ev.Description,
			frenchCell(ev.CreatedAt),
			ev.CreatedBy,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// frenchCell formats an instant back into the sheet's D/M/YYYY form,
// appending the time only when it is not midnight.
func frenchCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("02/01/2006")
	}
	return t.Format("02/01/2006 15:04")
}
