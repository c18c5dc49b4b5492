package reader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/autodoc/internal/model"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Components")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "spec.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func createTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_XLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Name", "Quantity", "Unit Cost", "Status"},
		{"Resistor", "10", "0.05", "approved"},
		{"Capacitor", "5", "0.20", "pending"},
	})

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 2)
	assert.Empty(t, res.RowErrors)

	assert.Equal(t, "Resistor", res.Components[0].Name)
	assert.Equal(t, 10, res.Components[0].Quantity)
	assert.Equal(t, model.StatusApproved, res.Components[0].Status)
	assert.Equal(t, "Capacitor", res.Components[1].Name)
	assert.True(t, res.Components[1].UnitCost.Equal(decimal.RequireFromString("0.20")))
}

func TestRead_CSV(t *testing.T) {
	path := createTestCSV(t, "name,quantity,unit_cost,status\nResistor,10,0.05,approved\n")

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "Resistor", res.Components[0].Name)
}

func TestRead_CSVWithBOM(t *testing.T) {
	path := createTestCSV(t, "\xEF\xBB\xBFname,quantity,unit_cost,status\nRelay,2,17.35,approved\n")

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "Relay", res.Components[0].Name)
}

func TestRead_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Read(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestRead_HeaderAliases(t *testing.T) {
	// Verbose template headings and shuffled column order both resolve.
	path := createTestXLSX(t, [][]string{
		{"Component ID", "Notes", "Unit Cost ($)", "Type", "Qty", "Status", "Name"},
		{"C-001", "UL Listed", "412.50", "Circuit Breaker", "1", "Approved", "Main Breaker"},
	})

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 1)

	c := res.Components[0]
	assert.Equal(t, "Main Breaker", c.Name)
	assert.Equal(t, "C-001", c.Reference)
	assert.Equal(t, "Circuit Breaker", c.Category)
	assert.Equal(t, 1, c.Quantity)
	assert.True(t, c.UnitCost.Equal(decimal.RequireFromString("412.50")))
	assert.Equal(t, model.StatusApproved, c.Status)
	assert.Equal(t, "UL Listed", c.Notes)
}

func TestRead_MissingRequiredColumns(t *testing.T) {
	path := createTestCSV(t, "name,voltage,material\nBreaker,480,Steel\n")

	_, err := Read(path)
	require.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "quantity")
	assert.Contains(t, err.Error(), "unit_cost")
	assert.Contains(t, err.Error(), "status")
}

func TestRead_SkipsBlankRows(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{}, // leading blank row before the header
		{"name", "quantity", "unit_cost", "status"},
		{"Resistor", "10", "0.05", "approved"},
		{"", "", "", ""},
		{"Capacitor", "5", "0.20", "pending"},
		{},
	})

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 2)
	assert.Empty(t, res.RowErrors)
}

func TestRead_CollectsRowErrors(t *testing.T) {
	path := createTestCSV(t, strings.Join([]string{
		"name,quantity,unit_cost,status",
		"Resistor,10,0.05,approved",
		",2,1.00,approved",
		"Capacitor,5,0.20,pending",
		"Relay,-3,0.10,approved",
	}, "\n"))

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 2)
	require.Len(t, res.RowErrors, 2)

	assert.Equal(t, 2, res.RowErrors[0].Row)
	assert.Equal(t, "name", res.RowErrors[0].Field)
	assert.Equal(t, 4, res.RowErrors[1].Row)
	assert.Equal(t, "quantity", res.RowErrors[1].Field)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := createTestCSV(t, "name,quantity,unit_cost,status\n")

	res, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, res.Components)
	assert.Empty(t, res.RowErrors)
}

func TestRead_Restartable(t *testing.T) {
	path := createTestCSV(t, "name,quantity,unit_cost,status\nResistor,10,0.05,approved\n")

	first, err := Read(path)
	require.NoError(t, err)
	second, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteSample_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample_components.xlsx")
	require.NoError(t, WriteSample(path))

	res, err := Read(path)
	require.NoError(t, err)
	require.Len(t, res.Components, 5)
	assert.Empty(t, res.RowErrors)

	assert.Equal(t, "Main Breaker", res.Components[0].Name)
	assert.Equal(t, "C-001", res.Components[0].Reference)
	assert.Equal(t, model.StatusUnderReview, res.Components[1].Status)
	assert.Equal(t, 40, res.Components[4].Quantity)
}

func TestSampleCSV(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, SampleCSV(&sb))

	r := csv.NewReader(strings.NewReader(sb.String()))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6) // header + 5 rows
	assert.Equal(t, sampleHeader, records[0])
	assert.Equal(t, "Terminal Block", records[5][1])
}

func TestFoldHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"Unit Cost ($)", "unit_cost"},
		{"  Component ID  ", "component_id"},
		{"unit-cost", "unit_cost"},
		{"Part No.", "part_no"},
		{"Voltage Rating (V)", "voltage_rating"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, foldHeader(tt.in))
		})
	}
}
