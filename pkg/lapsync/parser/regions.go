package parser

import (
	"strings"
	"unicode"

	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
	"github.com/xuri/excelize/v2"
)

// workbookScope is the scope excelize reports for workbook-level names.
const workbookScope = "Workbook"

// FindRegion resolves a defined name to a Region as seen from sheet.
// A name scoped to sheet takes precedence over a workbook-scoped name.
// Names compare case-insensitively, as in Excel.
func FindRegion(f *excelize.File, name, sheet string) (models.Region, bool) {
	var global *models.Region
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, name) {
			continue
		}
		region, ok := parseRegionReference(dn.Name, dn.RefersTo, sheet)
		if !ok {
			continue
		}
		if strings.EqualFold(dn.Scope, sheet) {
			return region, true
		}
		if global == nil && (dn.Scope == "" || dn.Scope == workbookScope) {
			global = &region
		}
	}
	if global == nil {
		return models.Region{}, false
	}
	return *global, true
}

// ExtractRegions returns every defined name that refers to a cell range,
// skipping built-in names such as _xlnm.Print_Area.
func ExtractRegions(f *excelize.File) []models.Region {
	var result []models.Region
	for _, dn := range f.GetDefinedName() {
		if strings.HasPrefix(strings.ToLower(dn.Name), "_xlnm.") {
			continue
		}
		defaultSheet := ""
		if dn.Scope != workbookScope {
			defaultSheet = dn.Scope
		}
		if region, ok := parseRegionReference(dn.Name, dn.RefersTo, defaultSheet); ok {
			result = append(result, region)
		}
	}
	return result
}

// parseRegionReference parses a defined name reference.
// Format: 'Sheet Name'!$A$1:$D$10, SheetName!$E:$E or SheetName!$E$5.
// Only the first area of a multi-area reference is used.
func parseRegionReference(name, ref, defaultSheet string) (models.Region, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")
	part := strings.TrimSpace(strings.Split(ref, ",")[0])
	if part == "" {
		return models.Region{}, false
	}

	sheet := defaultSheet
	rangeStr := part
	if idx := strings.LastIndex(part, "!"); idx >= 0 {
		sheet = unquoteSheetName(part[:idx])
		rangeStr = part[idx+1:]
	}
	if sheet == "" {
		return models.Region{}, false
	}

	region, ok := parseRangeToRegion(rangeStr)
	if !ok {
		return models.Region{}, false
	}
	region.Name = name
	region.Sheet = sheet
	return region, true
}

// unquoteSheetName strips the quotes Excel puts around sheet names that
// contain spaces and undoes '' escaping.
func unquoteSheetName(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, "''", "'")
	}
	return s
}

// parseRangeToRegion parses a range string like $A$1:$D$10 into bounds.
func parseRangeToRegion(rangeStr string) (models.Region, bool) {
	// Remove $ signs
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return models.Region{}, false
	}

	startCol, startRow, ok := parseRangeEndpoint(parts[0], 1)
	if !ok {
		return models.Region{}, false
	}
	endCol, endRow, ok := parseRangeEndpoint(parts[1], excelize.TotalRows)
	if !ok {
		return models.Region{}, false
	}

	return models.Region{
		R1: min(startRow, endRow),
		C1: min(startCol, endCol),
		R2: max(startRow, endRow),
		C2: max(startCol, endCol),
	}, true
}

// parseRangeEndpoint parses a cell name. A bare column letter, as in a
// whole-column reference, takes wholeColumnRow as its row.
func parseRangeEndpoint(s string, wholeColumnRow int) (col, row int, ok bool) {
	if s != "" && strings.IndexFunc(s, unicode.IsDigit) < 0 {
		n, err := excelize.ColumnNameToNumber(s)
		if err != nil {
			return 0, 0, false
		}
		return n, wholeColumnRow, true
	}
	var err error
	if col, row, err = excelize.CellNameToCoordinates(s); err != nil {
		return 0, 0, false
	}
	return col, row, true
}
