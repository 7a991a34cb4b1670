package history

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/applyninja/ninja/internal/api"
)

// EmptyText is shown in place of the table when the log has no entries.
const EmptyText = "No applications logged yet."

// Row is one rendered line of the application log. A placeholder row has
// Placeholder set and no other fields.
type Row struct {
	Company     string
	Role        string
	Status      string
	Date        string
	Placeholder string
}

// Rows converts entries to display rows. An empty log yields a single
// placeholder row.
func Rows(entries []api.HistoryEntry) []Row {
	if len(entries) == 0 {
		return []Row{{Placeholder: EmptyText}}
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Company: e.Company,
			Role:    e.Role,
			Status:  StatusLabel(e.Status),
			Date:    e.Date,
		})
	}
	return rows
}

// StatusLabel capitalizes each word of a raw status. A Caser keeps state,
// so each call gets its own.
func StatusLabel(status string) string {
	return cases.Title(language.Und, cases.NoLower).String(status)
}
