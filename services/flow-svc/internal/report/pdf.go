package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"flowtrace/pkg/domain"
)

// pdfMaxRows лимит строк в каждой таблице PDF
const pdfMaxRows = 40

// PDFGenerator печатный отчёт через maroto
type PDFGenerator struct {
	BaseGenerator
}

func (g *PDFGenerator) Format() Format      { return FormatPDF }
func (g *PDFGenerator) ContentType() string { return "application/pdf" }
func (g *PDFGenerator) Extension() string   { return ".pdf" }

// Стили
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	pathColor      = &props.Color{Red: 214, Green: 39, Blue: 40}   // #d62728
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{Size: 22, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	h2Style    = props.Text{Size: 14, Style: fontstyle.Bold, Color: headerBgColor, Top: 4}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}

	metricValueStyle = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Color: primaryColor}
	metricLabelStyle = props.Text{Size: 8, Align: align.Center, Color: darkGrayColor, Top: 9}

	tableHeaderStyle     = &props.Cell{BackgroundColor: primaryColor}
	tableHeaderTextStyle = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	tableCellStyle       = &props.Cell{BorderType: border.Bottom, BorderColor: lightGrayColor}
	tableCellTextStyle   = props.Text{Size: 9, Align: align.Center}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	b := config.NewBuilder().
		WithLeftMargin(g.opts.PDF.MarginLeft).
		WithTopMargin(g.opts.PDF.MarginTop).
		WithRightMargin(g.opts.PDF.MarginRight)
	if g.opts.PDF.EnablePageNumbers {
		b = b.WithPageNumber()
	}
	m := maroto.New(b.Build())
	t := data.Trace

	m.AddRow(14, text.NewCol(12, g.title(data), titleStyle))
	m.AddRow(4, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, "Run: "+data.RunID, smallStyle),
		text.NewCol(6, "Generated: "+formatTimestamp(g.generatedAt(data)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(6)

	g.addSection(m, "Summary")
	g.addMetricCards(m, []metricCard{
		{"Vertices", fmt.Sprint(t.Vertices())},
		{"Edges", fmt.Sprint(t.Original.EdgeCount())},
		{"Source → Sink", fmt.Sprintf("%d → %d", t.Source, t.Sink)},
		{"Max Flow", fmt.Sprint(t.MaxFlow)},
		{"Steps", fmt.Sprint(len(t.Steps))},
		{"Duration", formatDuration(data.Duration)},
	})

	g.addSection(m, "Augmentation Steps")
	g.addStepsTable(m, data)

	if t.MinCut != nil {
		g.addSection(m, fmt.Sprintf("Minimum Cut (capacity %d)", t.MinCut.Capacity))
		g.addTable(m, []string{"From", "To", "Capacity"}, cutRows(t.MinCut))
	}

	if t.Residual != nil {
		g.addSection(m, "Edge Flows")
		g.addTable(m, []string{"From", "To", "Flow", "Capacity", "Utilization"}, flowRows(t))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

type metricCard struct {
	Label string
	Value string
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	size := 12 / len(cards)
	cols := make([]core.Col, 0, len(cards))
	for _, c := range cards {
		cols = append(cols, col.New(size).Add(
			text.New(c.Value, metricValueStyle),
			text.New(c.Label, metricLabelStyle),
		))
	}
	m.AddRow(18, cols...)
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10, text.NewCol(12, title, h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(3)
}

func (g *PDFGenerator) addStepsTable(m core.Maroto, data *Data) {
	steps, truncated := g.steps(data)
	if len(steps) == 0 {
		m.AddRow(8, text.NewCol(12, "No augmenting path: the sink is unreachable.", smallStyle))
		return
	}

	m.AddRow(8,
		text.NewCol(1, "#", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(7, "Path", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Path Flow", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Total", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)
	pathStyle := tableCellTextStyle
	pathStyle.Color = pathColor

	for i, s := range steps {
		if i == pdfMaxRows {
			truncated += len(steps) - pdfMaxRows
			break
		}
		m.AddRow(6,
			text.NewCol(1, fmt.Sprint(s.Index), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(7, formatPath(s.Path), pathStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprint(s.PathFlow), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprint(s.CurrentMaxFlow), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
	if truncated > 0 {
		m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more steps", truncated), smallStyle))
	}
}

// addTable таблица с равными колонками
func (g *PDFGenerator) addTable(m core.Maroto, headers []string, rows [][]string) {
	size := 12 / len(headers)

	cols := make([]core.Col, len(headers))
	for i, h := range headers {
		cols[i] = text.NewCol(size, h, tableHeaderTextStyle).WithStyle(tableHeaderStyle)
	}
	m.AddRow(8, cols...)

	for i, r := range rows {
		if i == pdfMaxRows {
			m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more rows", len(rows)-pdfMaxRows), smallStyle))
			return
		}
		cells := make([]core.Col, len(r))
		for j, v := range r {
			cells[j] = text.NewCol(size, v, tableCellTextStyle).WithStyle(tableCellStyle)
		}
		m.AddRow(6, cells...)
	}
}

func cutRows(cut *domain.MinCut) [][]string {
	rows := make([][]string, len(cut.Edges))
	for i, e := range cut.Edges {
		rows[i] = []string{fmt.Sprint(e.From), fmt.Sprint(e.To), fmt.Sprint(e.Capacity)}
	}
	return rows
}

func flowRows(t *domain.Trace) [][]string {
	flows := domain.EdgeFlows(t.Original, t.Residual)
	rows := make([][]string, len(flows))
	for i, e := range flows {
		rows[i] = []string{
			fmt.Sprint(e.From), fmt.Sprint(e.To), fmt.Sprint(e.Flow), fmt.Sprint(e.Capacity), formatPercent(e.Utilization),
		}
	}
	return rows
}
