package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/recycle-disposals/internal/model"
)

// Generator renders the one-page impact certificate with a core PDF font,
// so text is limited to the cp1252 range.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.ImpactReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Recycling impact certificate", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 20)
	pdf.CellFormat(0, 14, "Certificate of Recycling Impact", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(safeValue(report.Company.Name)), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("has completed %d recycling disposals, saving:", report.Company.Stats.TotalDisposals), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	colWidths := []float64{90, 50, 30}
	drawTableRow(pdf, g.fontName, []string{"Impact", "Total", "Unit"}, colWidths, true)
	for _, row := range report.Company.Stats.ImpactRows() {
		drawTableRow(pdf, g.fontName, []string{row.Label, formatAmount(row.Value, 2), row.Unit}, colWidths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Materials recycled", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	var parts []string
	for _, t := range model.MaterialTypes {
		if q := report.Company.Stats.MaterialStats.Get(t); q > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", t, formatAmount(q, 2)))
		}
	}
	pdf.MultiCell(0, 6, safeValue(strings.Join(parts, ", ")), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Achievements", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	if len(report.Achievements) == 0 {
		pdf.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
	}
	for _, a := range report.Achievements {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s)", a.Title, a.Level)), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont(g.fontName, "I", 9)
	pdf.CellFormat(0, 6, "Issued "+formatDate(report.GeneratedAt), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
