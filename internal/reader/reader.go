// Package reader extracts component rows from tabular specification files.
package reader

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autodoc/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for file extensions the reader
	// does not handle.
	ErrUnsupportedFormat = eris.New("reader: unsupported file format")

	// ErrMalformedInput is returned when a file cannot be opened or has
	// no recognizable header structure.
	ErrMalformedInput = eris.New("reader: malformed input")
)

// Canonical column names. The header row is matched against these (via
// aliases); column order in the file is not significant.
const (
	colName      = "name"
	colQuantity  = "quantity"
	colUnitCost  = "unit_cost"
	colStatus    = "status"
	colReference = "reference"
	colCategory  = "category"
	colNotes     = "notes"
)

// requiredColumns must all be present in the header row.
var requiredColumns = []string{colName, colQuantity, colUnitCost, colStatus}

// headerAliases maps folded header spellings to canonical columns. Folding
// lowercases, drops parenthetical units, and collapses separators, so
// "Unit Cost ($)" and "unit_cost" land on the same key.
var headerAliases = map[string]string{
	"name":           colName,
	"component_name": colName,
	"component":      colName,
	"quantity":       colQuantity,
	"qty":            colQuantity,
	"count":          colQuantity,
	"unit_cost":      colUnitCost,
	"unit_price":     colUnitCost,
	"cost":           colUnitCost,
	"price":          colUnitCost,
	"status":         colStatus,
	"review_status":  colStatus,
	"reference":      colReference,
	"ref":            colReference,
	"component_id":   colReference,
	"part_number":    colReference,
	"part_no":        colReference,
	"category":       colCategory,
	"type":           colCategory,
	"notes":          colNotes,
	"comments":       colNotes,
	"remarks":        colNotes,
}

// Result is the outcome of reading one spec file: the rows that passed
// validation plus one RowError per row that did not. Both can be non-empty
// at once; the caller decides whether partial success is acceptable.
type Result struct {
	Components []model.Component `json:"components"`
	RowErrors  []model.RowError  `json:"row_errors,omitempty"`
}

// Read parses a component spec file into validated rows. Re-reading the
// same file yields the same result. The format is chosen by extension:
// .xlsx and .csv are supported.
func Read(path string) (*Result, error) {
	var grid [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		grid, err = readXLSX(path)
	case ".csv":
		grid, err = readCSV(path)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return buildResult(grid)
}

// buildResult locates the header row, maps its columns, and runs every
// non-blank data row through validation. Blank rows are skipped silently;
// row errors are collected, not fatal.
func buildResult(grid [][]string) (*Result, error) {
	header := -1
	for i, row := range grid {
		if !isBlankRow(row) {
			header = i
			break
		}
	}
	if header == -1 {
		return nil, eris.Wrap(ErrMalformedInput, "no header row found")
	}

	cols, err := mapHeader(grid[header])
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, row := range grid[header+1:] {
		if isBlankRow(row) {
			continue
		}

		raw := model.RawComponent{
			Name:      cellAt(row, cols, colName),
			Quantity:  cellAt(row, cols, colQuantity),
			UnitCost:  cellAt(row, cols, colUnitCost),
			Status:    cellAt(row, cols, colStatus),
			Reference: cellAt(row, cols, colReference),
			Category:  cellAt(row, cols, colCategory),
			Notes:     cellAt(row, cols, colNotes),
		}

		c, rowErr := model.ParseComponent(raw, i+1)
		if rowErr != nil {
			res.RowErrors = append(res.RowErrors, *rowErr)
			continue
		}
		res.Components = append(res.Components, c)
	}

	return res, nil
}

// mapHeader resolves header cells to canonical column indexes. The first
// occurrence of a column wins; unrecognized columns are ignored.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, cell := range header {
		canonical, ok := headerAliases[foldHeader(cell)]
		if !ok {
			continue
		}
		if _, seen := cols[canonical]; !seen {
			cols[canonical] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMalformedInput, "header missing required columns: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

// foldHeader normalizes a header cell for alias lookup: trims, drops a
// trailing parenthetical ("Unit Cost ($)" -> "unit cost"), lowercases, and
// collapses separator runs to single underscores.
func foldHeader(cell string) string {
	s := strings.TrimSpace(cell)
	if i := strings.Index(s, "("); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '.' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

func cellAt(row []string, cols map[string]int, col string) string {
	i, ok := cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
