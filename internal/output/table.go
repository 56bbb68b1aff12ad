package output

import (
	"github.com/gosuri/uitable"
)

// Row is one line of a two column table.
type Row struct {
	Name        string
	Description string
}

// Table renders rows as aligned columns under a heading. Long descriptions wrap.
func Table(styles *Styles, heading [2]string, rows []Row) string {
	table := uitable.New()
	table.MaxColWidth = 72
	table.Wrap = true
	table.Separator = "  "

	table.AddRow(styles.Heading(heading[0]), styles.Heading(heading[1]))
	for _, row := range rows {
		table.AddRow(row.Name, row.Description)
	}
	return table.String() + "\n"
}
