package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"flowtrace/pkg/domain"
)

// CSVGenerator журнал шагов и потоки по рёбрам в CSV
type CSVGenerator struct {
	BaseGenerator
}

func (g *CSVGenerator) Format() Format      { return FormatCSV }
func (g *CSVGenerator) ContentType() string { return "text/csv; charset=utf-8" }
func (g *CSVGenerator) Extension() string   { return ".csv" }

// csvWriter запоминает первую ошибку записи
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Generate генерирует CSV: блок шагов, пустая строка, блок рёбер
func (g *CSVGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}
	t := data.Trace

	steps, _ := g.steps(data)
	cw.Write("step", "action", "path", "path_flow", "current_max_flow")
	for _, s := range steps {
		cw.Write(
			strconv.Itoa(s.Index),
			s.Action,
			joinPath(s.Path),
			strconv.FormatInt(s.PathFlow, 10),
			strconv.FormatInt(s.CurrentMaxFlow, 10),
		)
	}

	if t.Residual != nil {
		cw.Write()
		cw.Write("from", "to", "capacity", "flow", "utilization")
		for _, e := range domain.EdgeFlows(t.Original, t.Residual) {
			cw.Write(
				strconv.Itoa(e.From),
				strconv.Itoa(e.To),
				strconv.FormatInt(e.Capacity, 10),
				strconv.FormatInt(e.Flow, 10),
				strconv.FormatFloat(e.Utilization, 'f', 4, 64),
			)
		}
	}

	if err := cw.Flush(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}
	return buf.Bytes(), nil
}

// joinPath путь через пробел, удобно для разбора обратно
func joinPath(path []int) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
