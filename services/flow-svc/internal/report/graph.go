package report

import (
	"context"

	"flowtrace/services/flow-svc/internal/render"
)

// DOTGenerator исходная сеть с итоговым потоком в формате Graphviz
type DOTGenerator struct {
	BaseGenerator
}

func (g *DOTGenerator) Format() Format      { return FormatDOT }
func (g *DOTGenerator) ContentType() string { return "text/vnd.graphviz; charset=utf-8" }
func (g *DOTGenerator) Extension() string   { return ".gv" }

// Generate без итоговой матрицы рисует только ёмкости
func (g *DOTGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	return []byte(flowDOT(g.title(data), data)), nil
}

// SVGGenerator тот же граф, свёрстанный встроенным Graphviz
type SVGGenerator struct {
	BaseGenerator
}

func (g *SVGGenerator) Format() Format      { return FormatSVG }
func (g *SVGGenerator) ContentType() string { return "image/svg+xml" }
func (g *SVGGenerator) Extension() string   { return ".svg" }

func (g *SVGGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	return render.RenderSVG(ctx, flowDOT(g.title(data), data))
}

func flowDOT(title string, data *Data) string {
	t := data.Trace
	if t.Residual == nil {
		return render.ToDOT(t.Original, render.Options{Title: title, Source: t.Source, Sink: t.Sink})
	}
	return render.ToDOT(t.Residual, render.Options{
		Title:    title,
		Source:   t.Source,
		Sink:     t.Sink,
		Original: t.Original,
	})
}
