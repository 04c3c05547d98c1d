package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"flowtrace/pkg/domain"
)

// Листы книги
const (
	sheetSummary  = "Summary"
	sheetSteps    = "Steps"
	sheetFlows    = "Edge Flows"
	sheetMinCut   = "Min Cut"
	sheetResidual = "Final Residual"
)

// ExcelGenerator книга XLSX: сводка, шаги, потоки, разрез, итоговая матрица
type ExcelGenerator struct {
	BaseGenerator
}

func (g *ExcelGenerator) Format() Format { return FormatXLSX }
func (g *ExcelGenerator) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (g *ExcelGenerator) Extension() string { return ".xlsx" }

// sheetWriter запоминает первую ошибку excelize
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, row int, values ...any) {
	w.row(sheet, row, values...)
	if w.err != nil || len(values) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	w.err = w.f.SetCellStyle(sheet, first, last, w.header)
}

func (w *sheetWriter) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

// Generate генерирует XLSX отчёт
func (g *ExcelGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, header: header}
	t := data.Trace

	g.writeSummary(w, data)
	g.writeSteps(w, data)
	if t.Residual != nil {
		g.writeFlows(w, t)
		g.writeMatrix(w, sheetResidual, t.Residual)
	}
	if t.MinCut != nil {
		g.writeMinCut(w, t.MinCut)
	}
	if w.err != nil {
		return nil, fmt.Errorf("write workbook: %w", w.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(w *sheetWriter, data *Data) {
	t := data.Trace
	w.headerRow(sheetSummary, 1, g.title(data), "")
	rows := [][]any{
		{"Run ID", data.RunID},
		{"Generated", formatTimestamp(g.generatedAt(data))},
		{"Vertices", t.Vertices()},
		{"Edges", t.Original.EdgeCount()},
		{"Source", t.Source},
		{"Sink", t.Sink},
		{"Max Flow", t.MaxFlow},
		{"Augmenting Paths", len(t.Steps)},
		{"Duration (ms)", float64(data.Duration.Microseconds()) / 1000},
	}
	for i, r := range rows {
		w.row(sheetSummary, i+3, r...)
	}
	if w.err == nil {
		w.err = w.f.SetColWidth(sheetSummary, "A", "B", 24)
	}
}

func (g *ExcelGenerator) writeSteps(w *sheetWriter, data *Data) {
	steps, _ := g.steps(data)
	w.sheet(sheetSteps)
	w.headerRow(sheetSteps, 1, "Step", "Path", "Path Flow", "Max Flow So Far")
	for i, s := range steps {
		w.row(sheetSteps, i+2, s.Index, formatPath(s.Path), s.PathFlow, s.CurrentMaxFlow)
	}
	if w.err == nil {
		w.err = w.f.SetColWidth(sheetSteps, "B", "B", 40)
	}
}

func (g *ExcelGenerator) writeFlows(w *sheetWriter, t *domain.Trace) {
	w.sheet(sheetFlows)
	w.headerRow(sheetFlows, 1, "From", "To", "Capacity", "Flow", "Utilization")
	for i, e := range domain.EdgeFlows(t.Original, t.Residual) {
		w.row(sheetFlows, i+2, e.From, e.To, e.Capacity, e.Flow, e.Utilization)
	}
}

func (g *ExcelGenerator) writeMinCut(w *sheetWriter, cut *domain.MinCut) {
	w.sheet(sheetMinCut)
	w.headerRow(sheetMinCut, 1, "From", "To", "Capacity")
	for i, e := range cut.Edges {
		w.row(sheetMinCut, i+2, e.From, e.To, e.Capacity)
	}
	w.row(sheetMinCut, len(cut.Edges)+3, "Total", "", cut.Capacity)
}

// writeMatrix матрица с подписями вершин в первой строке и колонке
func (g *ExcelGenerator) writeMatrix(w *sheetWriter, sheet string, m domain.Matrix) {
	w.sheet(sheet)
	header := make([]any, 0, len(m)+1)
	header = append(header, "u \\ v")
	for v := range m {
		header = append(header, v)
	}
	w.headerRow(sheet, 1, header...)

	for u, row := range m {
		values := make([]any, 0, len(row)+1)
		values = append(values, u)
		for _, c := range row {
			values = append(values, c)
		}
		w.row(sheet, u+2, values...)
	}
}
