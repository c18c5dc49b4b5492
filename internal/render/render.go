// Package render produces the formatted PDF report for one pipeline run.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"

	"github.com/sells-group/autodoc/internal/model"
)

// Brand palette.
var (
	brandBlue   = rgb{26, 58, 92}   // #1A3A5C
	brandOrange = rgb{245, 124, 0}  // #F57C00
	lightGray   = rgb{245, 245, 245}
	midGray     = rgb{158, 158, 158}
	darkText    = rgb{33, 33, 33}
)

type rgb struct{ r, g, b int }

// Page geometry in inches (US Letter).
const (
	pageWidth    = 8.5
	pageHeight   = 11.0
	margin       = 0.75
	contentWidth = pageWidth - 2*margin
	breakAt      = pageHeight - 1.0 // reserve the bottom inch for the footer
)

// componentColumns defines the body table layout. Widths sum to contentWidth.
var componentColumns = []struct {
	title string
	width float64
	align string
}{
	{"Ref", 0.85, "L"},
	{"Name", 1.85, "L"},
	{"Category", 1.20, "L"},
	{"Qty", 0.50, "R"},
	{"Unit Cost", 0.85, "R"},
	{"Line Total", 0.90, "R"},
	{"Status", 0.85, "L"},
}

// Renderer writes report documents into a fixed output directory.
type Renderer struct {
	dir string
}

// New returns a Renderer that writes into dir. The directory is created on
// first render.
func New(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Render writes the report document for one run and returns its path. Rows
// appear in the body table in input order. Cell values are sanitized, never
// rejected; unsafe output locations are the only render failure.
func (r *Renderer) Render(rows []model.Component, agg model.Aggregate, meta model.RunMetadata, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "render: create output dir %s", r.dir)
	}

	path := filepath.Join(r.dir, fileName(meta.ReportID, meta.Project))
	doc := buildDocument(rows, agg, meta, generatedAt)
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", eris.Wrapf(err, "render: write %s", path)
	}
	return path, nil
}

// buildDocument assembles the fixed layout: header band, metadata grid,
// component table, summary block, per-page footer.
func buildDocument(rows []model.Component, agg model.Aggregate, meta model.RunMetadata, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	stamp := generatedAt.Format("January 02, 2006 15:04:05")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-0.65)
		setDraw(pdf, midGray)
		pdf.SetLineWidth(0.014)
		pdf.Line(margin, pdf.GetY(), pageWidth-margin, pdf.GetY())
		pdf.Ln(0.08)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, midGray)
		left := fmt.Sprintf("Generated by AutoDoc Automation Pipeline | %s | %s", stamp, meta.ReportID)
		pdf.CellFormat(5.5, 0.18, tr(left), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth-5.5, 0.18, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Header band.
	pdf.SetFont("Helvetica", "B", 22)
	setText(pdf, brandBlue)
	pdf.CellFormat(contentWidth, 0.35, "AutoDoc", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, midGray)
	pdf.CellFormat(contentWidth, 0.22, "Engineering Component Specification Report", "", 1, "L", false, 0, "")
	pdf.Ln(0.08)
	setDraw(pdf, brandOrange)
	pdf.SetLineWidth(0.028)
	pdf.Line(margin, pdf.GetY(), pageWidth-margin, pdf.GetY())
	pdf.Ln(0.18)

	metaGrid(pdf, tr, [][4]string{
		{"Report ID", meta.ReportID, "Project", sanitizeCell(meta.Project)},
		{"Generated", stamp, "Engineer", sanitizeCell(meta.Engineer)},
		{"Components", fmt.Sprintf("%d", agg.ComponentCount), "Status", "DRAFT"},
	})
	pdf.Ln(0.22)

	sectionHeader(pdf, "Component Specifications")
	if len(rows) > 0 {
		componentTable(pdf, tr, rows)
	}
	pdf.Ln(0.22)

	checkBreak(pdf, 0.6)
	sectionHeader(pdf, "Summary")
	summaryTable(pdf, tr, agg)

	return pdf
}

// metaGrid draws the label/value header grid, alternating row fills.
func metaGrid(pdf *fpdf.Fpdf, tr func(string) string, rows [][4]string) {
	widths := [4]float64{1.1, 2.4, 1.0, 2.5}
	setDraw(pdf, rgb{255, 255, 255})
	pdf.SetLineWidth(0.007)

	for i, row := range rows {
		fill := i%2 == 0
		if fill {
			setFill(pdf, lightGray)
		} else {
			setFill(pdf, rgb{255, 255, 255})
		}
		for j, cell := range row {
			if j%2 == 0 {
				pdf.SetFont("Helvetica", "B", 9)
				setText(pdf, brandBlue)
			} else {
				pdf.SetFont("Helvetica", "", 9)
				setText(pdf, darkText)
			}
			ln := 0
			if j == 3 {
				ln = 1
			}
			pdf.CellFormat(widths[j], 0.28, " "+truncate(pdf, tr(cell), widths[j]), "1", ln, "L", true, 0, "")
		}
	}
}

// componentTable draws the body rows in input order, repeating the heading
// row after every page break.
func componentTable(pdf *fpdf.Fpdf, tr func(string) string, rows []model.Component) {
	const rowH = 0.26

	heading := func() {
		pdf.SetFont("Helvetica", "B", 8)
		setText(pdf, rgb{255, 255, 255})
		setFill(pdf, brandBlue)
		setDraw(pdf, midGray)
		pdf.SetLineWidth(0.004)
		for i, col := range componentColumns {
			ln := 0
			if i == len(componentColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, rowH, col.title, "1", ln, col.align, true, 0, "")
		}
	}
	heading()

	pdf.SetFont("Helvetica", "", 8)
	for i, row := range rows {
		if pdf.GetY()+rowH > breakAt {
			pdf.AddPage()
			heading()
			pdf.SetFont("Helvetica", "", 8)
		}

		if i%2 == 1 {
			setFill(pdf, lightGray)
		} else {
			setFill(pdf, rgb{255, 255, 255})
		}
		setText(pdf, darkText)

		cells := rowCells(row)
		for j, col := range componentColumns {
			ln := 0
			if j == len(componentColumns)-1 {
				ln = 1
			}
			txt := truncate(pdf, tr(sanitizeCell(cells[j])), col.width)
			pdf.CellFormat(col.width, rowH, txt, "1", ln, col.align, true, 0, "")
		}
	}
}

// rowCells maps one component onto body table cells, in column order.
func rowCells(row model.Component) []string {
	return []string{
		row.Reference,
		row.Name,
		row.Category,
		fmt.Sprintf("%d", row.Quantity),
		formatMoney(row.UnitCost),
		formatMoney(row.LineCost()),
		statusLabel(row.Status),
	}
}

// summaryTable draws the label/value summary block: totals, then the status
// breakdown in a fixed order, then categories alphabetically.
func summaryTable(pdf *fpdf.Fpdf, tr func(string) string, agg model.Aggregate) {
	type item struct{ label, value string }

	items := []item{
		{"Total Components", fmt.Sprintf("%d", agg.ComponentCount)},
		{"Total Cost", formatMoney(agg.TotalCost)},
	}
	for _, s := range []model.ComponentStatus{
		model.StatusApproved,
		model.StatusUnderReview,
		model.StatusPending,
		model.StatusRejected,
		model.StatusUnknown,
	} {
		items = append(items, item{statusLabel(s), fmt.Sprintf("%d", agg.StatusBreakdown[s])})
	}

	categories := make([]string, 0, len(agg.CategoryBreakdown))
	for c := range agg.CategoryBreakdown {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		items = append(items, item{"Type: " + c, fmt.Sprintf("%d", agg.CategoryBreakdown[c])})
	}

	setDraw(pdf, rgb{255, 255, 255})
	pdf.SetLineWidth(0.004)
	for i, it := range items {
		checkBreak(pdf, 0.24)
		if i%2 == 0 {
			setFill(pdf, lightGray)
		} else {
			setFill(pdf, rgb{255, 255, 255})
		}
		pdf.SetFont("Helvetica", "B", 9)
		setText(pdf, brandBlue)
		pdf.CellFormat(2.0, 0.24, " "+truncate(pdf, tr(it.label), 2.0), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		setText(pdf, darkText)
		pdf.CellFormat(1.5, 0.24, it.value, "1", 1, "L", true, 0, "")
	}
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	setText(pdf, brandBlue)
	pdf.CellFormat(contentWidth, 0.26, title, "", 1, "L", false, 0, "")
	pdf.Ln(0.04)
}

func checkBreak(pdf *fpdf.Fpdf, need float64) {
	if pdf.GetY()+need > breakAt {
		pdf.AddPage()
	}
}

// truncate shortens s to fit in an inch width for the current font, adding
// an ellipsis when it cuts.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	const pad = 0.08
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
