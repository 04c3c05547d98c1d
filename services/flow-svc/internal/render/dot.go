// Package render draws capacity and residual matrices as Graphviz graphs.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"flowtrace/pkg/domain"
)

// Options controls how a matrix is drawn.
type Options struct {
	// Title is printed above the graph when set.
	Title string

	// Source and Sink are drawn with distinct shapes. -1 disables.
	Source int
	Sink   int

	// Path highlights consecutive vertex pairs as the augmenting path.
	Path []int

	// Original switches edge labels to "flow/capacity": the drawn matrix is
	// then treated as the residual of Original.
	Original domain.Matrix
}

const (
	pathColor   = "#d62728"
	sourceColor = "#c7e9c0"
	sinkColor   = "#fdd0a2"
)

// ToDOT converts a matrix into Graphviz DOT source.
func ToDOT(m domain.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n")

	for v := range m {
		attrs := ""
		switch v {
		case opts.Source:
			attrs = fmt.Sprintf(" [shape=doublecircle, fillcolor=%q]", sourceColor)
		case opts.Sink:
			attrs = fmt.Sprintf(" [shape=doublecircle, fillcolor=%q]", sinkColor)
		}
		fmt.Fprintf(&buf, "  %d%s;\n", v, attrs)
	}
	buf.WriteString("\n")

	onPath := pathEdges(opts.Path)
	if opts.Original != nil {
		writeFlowEdges(&buf, opts.Original, m, onPath)
	} else {
		writeCapacityEdges(&buf, m, onPath)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// StepDOT draws the residual snapshot of a step with its augmenting path.
func StepDOT(step domain.StepRecord, source, sink int) string {
	return ToDOT(step.ResidualGraph, Options{
		Title:  fmt.Sprintf("step %d: +%d (total %d)", step.Index, step.PathFlow, step.CurrentMaxFlow),
		Source: source,
		Sink:   sink,
		Path:   step.Path,
	})
}

// FlowDOT draws the original network labelled with the final flow.
func FlowDOT(original, residual domain.Matrix, source, sink int, maxFlow domain.Capacity) string {
	return ToDOT(residual, Options{
		Title:    fmt.Sprintf("max flow %d", maxFlow),
		Source:   source,
		Sink:     sink,
		Original: original,
	})
}

type edgeKey struct{ u, v int }

func pathEdges(path []int) map[edgeKey]bool {
	out := make(map[edgeKey]bool, len(path))
	for i := 0; i+1 < len(path); i++ {
		out[edgeKey{path[i], path[i+1]}] = true
	}
	return out
}

func writeCapacityEdges(buf *bytes.Buffer, m domain.Matrix, onPath map[edgeKey]bool) {
	for u, row := range m {
		for v, c := range row {
			if c <= 0 {
				continue
			}
			fmt.Fprintf(buf, "  %d -> %d [label=\"%d\"%s];\n", u, v, c, highlight(onPath[edgeKey{u, v}]))
		}
	}
}

func writeFlowEdges(buf *bytes.Buffer, original, residual domain.Matrix, onPath map[edgeKey]bool) {
	for _, e := range domain.EdgeFlows(original, residual) {
		style := highlight(onPath[edgeKey{e.From, e.To}])
		if style == "" && e.Saturated() {
			style = ", penwidth=2"
		} else if style == "" && e.Flow == 0 {
			style = ", style=dashed, color=grey"
		}
		fmt.Fprintf(buf, "  %d -> %d [label=\"%d/%d\"%s];\n", e.From, e.To, e.Flow, e.Capacity, style)
	}
}

func highlight(on bool) string {
	if !on {
		return ""
	}
	return fmt.Sprintf(", color=%q, fontcolor=%q, penwidth=2.5", pathColor, pathColor)
}

// RenderSVG lays out DOT source with the embedded Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the pt-sized root tag so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
