package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/recycle-disposals/internal/model"
)

const (
	summarySheet      = "Summary"
	disposalsSheet    = "Disposals"
	achievementsSheet = "Achievements"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ImpactReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report)

	if _, err := file.NewSheet(disposalsSheet); err != nil {
		return nil, err
	}
	g.writeDisposals(file, report)

	if _, err := file.NewSheet(achievementsSheet); err != nil {
		return nil, err
	}
	g.writeAchievements(file, report)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.ImpactReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	stats := report.Company.Stats

	set("A1", "Company")
	set("B1", report.Company.Name)
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Completed disposals")
	set("B3", stats.TotalDisposals)

	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Impact")
	set(fmt.Sprintf("B%d", tableRow), "Total")
	set(fmt.Sprintf("C%d", tableRow), "Unit")
	for i, row := range stats.ImpactRows() {
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), row.Label)
		set(fmt.Sprintf("B%d", r), round3(row.Value))
		set(fmt.Sprintf("C%d", r), row.Unit)
	}

	materialRow := tableRow + len(stats.ImpactRows()) + 2
	set(fmt.Sprintf("A%d", materialRow), "Material type")
	set(fmt.Sprintf("B%d", materialRow), "Quantity")
	for i, t := range model.MaterialTypes {
		r := materialRow + 1 + i
		set(fmt.Sprintf("A%d", r), capitalize(string(t)))
		set(fmt.Sprintf("B%d", r), round3(stats.MaterialStats.Get(t)))
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "B", 20)
	_ = file.SetColWidth(summarySheet, "C", "C", 10)
}

func (g *Generator) writeDisposals(file *excelize.File, report model.ImpactReport) {
	headers := []string{"Completed at", "Disposal", "Address", "Total price", "CO2 saved", "Water saved", "Energy saved"}
	writeHeader(file, disposalsSheet, headers)

	for i, d := range report.Disposals {
		row := i + 2
		var totals model.ImpactTotals
		if d.Impact != nil {
			totals = d.Impact.Delta.Totals
		}
		values := []interface{}{
			formatTime(d.CompletedAt),
			d.ID.String(),
			d.AddressName,
			round3(d.TotalPrice),
			round3(totals.CO2Saved),
			round3(totals.WaterSaved),
			round3(totals.EnergySaved),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = file.SetCellValue(disposalsSheet, cell, value)
		}
	}

	_ = file.SetColWidth(disposalsSheet, "A", "A", 20)
	_ = file.SetColWidth(disposalsSheet, "B", "B", 38)
	_ = file.SetColWidth(disposalsSheet, "C", "C", 24)
	_ = file.SetColWidth(disposalsSheet, "D", "G", 14)
}

func (g *Generator) writeAchievements(file *excelize.File, report model.ImpactReport) {
	writeHeader(file, achievementsSheet, []string{"Title", "Level", "Description", "Threshold"})
	for i, a := range report.Achievements {
		row := i + 2
		_ = file.SetCellValue(achievementsSheet, fmt.Sprintf("A%d", row), a.Title)
		_ = file.SetCellValue(achievementsSheet, fmt.Sprintf("B%d", row), string(a.Level))
		_ = file.SetCellValue(achievementsSheet, fmt.Sprintf("C%d", row), a.Description)
		_ = file.SetCellValue(achievementsSheet, fmt.Sprintf("D%d", row), a.Threshold)
	}
	_ = file.SetColWidth(achievementsSheet, "A", "A", 28)
	_ = file.SetColWidth(achievementsSheet, "C", "C", 48)
}

func writeHeader(file *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
