package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"flowtrace/pkg/domain"
)

// maxMatrixSize крупнее этого снимки матриц в markdown не выводятся
const maxMatrixSize = 12

// MarkdownGenerator человекочитаемый отчёт с таблицами
type MarkdownGenerator struct {
	BaseGenerator
}

func (g *MarkdownGenerator) Format() Format      { return FormatMarkdown }
func (g *MarkdownGenerator) ContentType() string { return "text/markdown; charset=utf-8" }
func (g *MarkdownGenerator) Extension() string   { return ".md" }

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	t := data.Trace

	fmt.Fprintf(&buf, "# %s\n\n", g.title(data))
	if data.RunID != "" {
		fmt.Fprintf(&buf, "Run `%s`, ", data.RunID)
	}
	fmt.Fprintf(&buf, "generated %s UTC.\n\n", formatTimestamp(g.generatedAt(data)))

	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&buf, "| Vertices | %d |\n", t.Vertices())
	fmt.Fprintf(&buf, "| Edges | %d |\n", t.Original.EdgeCount())
	fmt.Fprintf(&buf, "| Source | %d |\n", t.Source)
	fmt.Fprintf(&buf, "| Sink | %d |\n", t.Sink)
	fmt.Fprintf(&buf, "| **Max flow** | **%d** |\n", t.MaxFlow)
	fmt.Fprintf(&buf, "| Augmenting paths | %d |\n", len(t.Steps))
	if data.Duration > 0 {
		fmt.Fprintf(&buf, "| Duration | %s |\n", formatDuration(data.Duration))
	}
	buf.WriteString("\n")

	g.writeSteps(&buf, data)
	g.writeMinCut(&buf, t.MinCut)
	g.writeEdgeFlows(&buf, t)

	buf.WriteString("---\n*Generated by flowtrace*\n")
	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeSteps(buf *bytes.Buffer, data *Data) {
	steps, truncated := g.steps(data)

	buf.WriteString("## Augmentation steps\n\n")
	if len(steps) == 0 {
		buf.WriteString("The sink is unreachable from the source; no augmenting path exists.\n\n")
		return
	}

	buf.WriteString("| # | Path | Path flow | Max flow so far |\n|---:|---|---:|---:|\n")
	for _, s := range steps {
		fmt.Fprintf(buf, "| %d | %s | %d | %d |\n", s.Index, formatPath(s.Path), s.PathFlow, s.CurrentMaxFlow)
	}
	if truncated > 0 {
		fmt.Fprintf(buf, "\n*%d more steps omitted.*\n", truncated)
	}
	buf.WriteString("\n")

	if data.Trace.Vertices() > maxMatrixSize {
		return
	}
	for _, s := range steps {
		if s.ResidualGraph == nil {
			continue
		}
		fmt.Fprintf(buf, "### Residual graph before step %d\n\n```\n%s```\n\n", s.Index, formatMatrix(s.ResidualGraph))
	}
}

func (g *MarkdownGenerator) writeMinCut(buf *bytes.Buffer, cut *domain.MinCut) {
	if cut == nil {
		return
	}
	buf.WriteString("## Minimum cut\n\n")
	fmt.Fprintf(buf, "Source side: `%v`, sink side: `%v`, capacity **%d**.\n\n", cut.SourceSide, cut.SinkSide, cut.Capacity)
	if len(cut.Edges) == 0 {
		return
	}
	buf.WriteString("| From | To | Capacity |\n|---:|---:|---:|\n")
	for _, e := range cut.Edges {
		fmt.Fprintf(buf, "| %d | %d | %d |\n", e.From, e.To, e.Capacity)
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeEdgeFlows(buf *bytes.Buffer, t *domain.Trace) {
	if t.Residual == nil {
		return
	}
	stats := domain.CalculateFlowStatistics(t.Original, t.Residual, t.Source)

	buf.WriteString("## Edge flows\n\n")
	fmt.Fprintf(buf, "%d of %d edges carry flow, %d saturated, average utilization %s.\n\n",
		stats.ActiveEdges, stats.EdgeCount, stats.SaturatedEdges, formatPercent(stats.AverageUtilization))

	buf.WriteString("| From | To | Flow | Capacity | Utilization |\n|---:|---:|---:|---:|---|\n")
	for _, e := range stats.Flows {
		fmt.Fprintf(buf, "| %d | %d | %d | %d | %s (%s) |\n",
			e.From, e.To, e.Flow, e.Capacity, formatPercent(e.Utilization), domain.UtilizationLevel(e.Utilization))
	}
	buf.WriteString("\n")
}

// formatMatrix матрица с выравниванием по ширине самого длинного числа
func formatMatrix(m domain.Matrix) string {
	width := 1
	for _, row := range m {
		for _, c := range row {
			if w := len(fmt.Sprint(c)); w > width {
				width = w
			}
		}
	}

	var sb strings.Builder
	for _, row := range m {
		for j, c := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%*d", width, c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
