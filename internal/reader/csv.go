package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV returns a CSV file as a string grid. A leading UTF-8 BOM is
// stripped; rows may have varying field counts.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "open csv: %v", err)
	}
	defer f.Close() //nolint:errcheck

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var grid [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedInput, "parse csv: %v", err)
		}
		grid = append(grid, record)
	}
	return grid, nil
}
