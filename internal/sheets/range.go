package sheets

import (
	"regexp"
	"strings"
)

var (
	spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	cellRefPattern        = regexp.MustCompile(`^[A-Za-z]{1,3}\d*(:[A-Za-z]{1,3}\d*)?$`)
)

// Unquote strips one layer of wrapping double or single quotes, as left
// behind by .env files and dashboard copy/paste.
func Unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// NormalizeSpreadsheetID accepts a bare id or a full spreadsheet URL.
func NormalizeSpreadsheetID(raw string) string {
	raw = strings.TrimSpace(Unquote(raw))
	if m := spreadsheetURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// NormalizeRange quotes the sheet segment of an A1 range when it contains a
// space. Already-quoted segments are left alone, so the result is a fixed point.
func NormalizeRange(raw string) string {
	rng := strings.TrimSpace(Unquote(raw))
	sheet, cells, hasCells := splitRange(rng)
	if !strings.Contains(sheet, " ") || isQuoted(sheet) {
		return rng
	}
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if !hasCells {
		return quoted
	}
	return quoted + "!" + cells
}

// SheetName returns the unquoted tab name a range addresses, or "" when the
// range is a bare cell reference on the default tab.
func SheetName(rng string) string {
	sheet, _, hasCells := splitRange(strings.TrimSpace(rng))
	if !hasCells && cellRefPattern.MatchString(sheet) {
		return ""
	}
	if isQuoted(sheet) {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet
}

// WithCells replaces the cell part of rng, keeping its sheet segment.
func WithCells(rng, cells string) string {
	sheet, _, hasCells := splitRange(NormalizeRange(rng))
	if !hasCells && cellRefPattern.MatchString(sheet) {
		return cells
	}
	return sheet + "!" + cells
}

func splitRange(rng string) (sheet, cells string, hasCells bool) {
	idx := strings.LastIndex(rng, "!")
	if idx < 0 {
		return rng, "", false
	}
	return rng[:idx], rng[idx+1:], true
}

func isQuoted(sheet string) bool {
	return len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\''
}
