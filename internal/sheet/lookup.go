package sheet

import (
	"strings"

	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
)

// Lookup sheet column labels.
const (
	colEmails      = "Emails"
	colDesignation = "Désignation"
)

// ParseLookup parses the secondary lookup sheet ("Emails" / "Désignation"
// columns) into a lowercased-email → display-name map.
//
// The lookup feed is best-effort: a malformed payload, missing columns or
// blank cells degrade to a smaller (possibly empty) map, never an error.
// The caller treats a nil/empty map as "no lookup".
func ParseLookup(data []byte) map[string]string {
	rows, err := ParseRows(data)
	if err != nil {
		appLog.Error("lookup sheet unparseable; continuing without name lookup", err)
		return map[string]string{}
	}

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Get(colEmails)))
		name := strings.TrimSpace(row.Get(colDesignation))
		if email == "" || name == "" {
			continue
		}
		names[email] = name
	}

	appLog.Debug("lookup sheet parsed", "entry_count", len(names))
	return names
}
