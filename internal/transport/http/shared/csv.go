package shared

import "strings"

// CSVCell quotes values a spreadsheet would evaluate as a formula.
func CSVCell(value string) string {
	if value != "" && strings.ContainsAny(value[:1], "=+-@\t\r") {
		return "'" + value
	}
	return value
}
