package report

import (
	"context"
	"encoding/json"
	"time"

	"flowtrace/pkg/domain"
)

// JSONGenerator полный машиночитаемый отчёт
type JSONGenerator struct {
	BaseGenerator
}

func (g *JSONGenerator) Format() Format      { return FormatJSON }
func (g *JSONGenerator) ContentType() string { return "application/json" }
func (g *JSONGenerator) Extension() string   { return ".json" }

// jsonReport структура JSON документа
type jsonReport struct {
	Title       string                  `json:"title"`
	RunID       string                  `json:"run_id,omitempty"`
	Name        string                  `json:"name,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	DurationMs  float64                 `json:"duration_ms"`
	Source      int                     `json:"source"`
	Sink        int                     `json:"sink"`
	Vertices    int                     `json:"vertices"`
	MaxFlow     domain.Capacity         `json:"max_flow"`
	Original    domain.Matrix           `json:"original"`
	Steps       domain.StepLog          `json:"steps"`
	Truncated   int                     `json:"truncated_steps,omitempty"`
	MinCut      *domain.MinCut          `json:"min_cut,omitempty"`
	Flow        *domain.FlowStatistics  `json:"flow_statistics,omitempty"`
	TraceStats  *domain.TraceStatistics `json:"trace_statistics"`
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(_ context.Context, data *Data) ([]byte, error) {
	t := data.Trace
	steps, truncated := g.steps(data)

	rep := jsonReport{
		Title:       g.title(data),
		RunID:       data.RunID,
		Name:        data.Name,
		GeneratedAt: g.generatedAt(data),
		DurationMs:  float64(data.Duration) / float64(time.Millisecond),
		Source:      t.Source,
		Sink:        t.Sink,
		Vertices:    t.Vertices(),
		MaxFlow:     t.MaxFlow,
		Original:    t.Original,
		Steps:       steps,
		Truncated:   truncated,
		MinCut:      t.MinCut,
		TraceStats:  domain.CalculateTraceStatistics(t.Steps),
	}
	if t.Residual != nil {
		rep.Flow = domain.CalculateFlowStatistics(t.Original, t.Residual, t.Source)
	}
	if rep.Steps == nil {
		rep.Steps = domain.StepLog{}
	}

	return json.MarshalIndent(rep, "", "  ")
}
