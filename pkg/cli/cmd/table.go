package cmd

import "github.com/pterm/pterm"

// renderTable prints a header/rows table with the shared style.
func renderTable(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)

	table := pterm.DefaultTable.
		WithHasHeader(true).
		WithHeaderStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).
		WithData(data)
	table.Render()
}
