package reader

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// sampleHeader and sampleRows form the reference input template served to
// users who want a starting point. The headings exercise the alias mapping
// the same way real uploads do.
var sampleHeader = []string{"Component ID", "Name", "Type", "Quantity", "Unit Cost ($)", "Status", "Notes"}

var sampleRows = [][]string{
	{"C-001", "Main Breaker", "Circuit Breaker", "1", "412.50", "Approved", "UL Listed"},
	{"C-002", "Bus Bar L1", "Bus Bar", "3", "86.00", "Under Review", "Check torque spec"},
	{"C-003", "Control Relay", "Relay", "12", "17.35", "Approved", "DIN rail mount"},
	{"C-004", "Earth Ground", "Grounding", "2", "9.90", "Pending", "Awaiting drawing"},
	{"C-005", "Terminal Block", "Terminal", "40", "1.25", "Approved", "Phoenix Contact"},
}

func buildSample() (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Components")
	if err != nil {
		return nil, eris.Wrap(err, "reader: add sample sheet")
	}

	hr := sheet.AddRow()
	for _, h := range sampleHeader {
		hr.AddCell().SetString(h)
	}
	for _, row := range sampleRows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	return f, nil
}

// WriteSample writes the sample component workbook to path.
func WriteSample(path string) error {
	f, err := buildSample()
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "reader: save sample workbook %s", path)
	}
	return nil
}

// SampleXLSX streams the sample component workbook to w.
func SampleXLSX(w io.Writer) error {
	f, err := buildSample()
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "reader: write sample workbook")
	}
	return nil
}

// SampleCSV writes the sample rows in CSV form.
func SampleCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return eris.Wrap(err, "reader: write sample header")
	}
	for _, row := range sampleRows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "reader: write sample row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "reader: flush sample csv")
	}
	return nil
}
