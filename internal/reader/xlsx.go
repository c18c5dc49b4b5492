package reader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readXLSX returns the first sheet of a workbook as a string grid.
func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "open xlsx: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(ErrMalformedInput, "xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	grid := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
