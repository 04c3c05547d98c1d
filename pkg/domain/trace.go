package domain

import (
	"errors"
	"fmt"
)

// ErrInconsistentTrace трасса нарушает инварианты накопления потока
var ErrInconsistentTrace = errors.New("inconsistent step trace")

// StepRecord неизменяемый снимок одной аугментации.
// ResidualGraph снят до обновления остаточных ёмкостей этого шага.
type StepRecord struct {
	Index          int      `json:"index"`
	Action         string   `json:"action"`
	Path           []int    `json:"path,omitempty"`
	PathFlow       Capacity `json:"path_flow"`
	CurrentMaxFlow Capacity `json:"current_max_flow"`
	ResidualGraph  Matrix   `json:"residual_graph,omitempty"`
}

// StepLog упорядоченный журнал шагов, порядок вставки = хронология
type StepLog []StepRecord

// TotalFlow сумма path_flow по всем шагам
func (l StepLog) TotalFlow() Capacity {
	var total Capacity
	for _, s := range l {
		total += s.PathFlow
	}
	return total
}

// Verify проверяет, что current_max_flow k-го шага равен сумме path_flow 1..k,
// а каждый path_flow положителен.
func (l StepLog) Verify() error {
	var running Capacity
	for i, s := range l {
		if s.PathFlow <= 0 {
			return fmt.Errorf("%w: step %d has non-positive path flow %d", ErrInconsistentTrace, i+1, s.PathFlow)
		}
		running += s.PathFlow
		if s.CurrentMaxFlow != running {
			return fmt.Errorf("%w: step %d current_max_flow %d, want %d", ErrInconsistentTrace, i+1, s.CurrentMaxFlow, running)
		}
	}
	return nil
}

// WithoutSnapshots возвращает копию журнала без матриц
func (l StepLog) WithoutSnapshots() StepLog {
	out := make(StepLog, len(l))
	for i, s := range l {
		s.ResidualGraph = nil
		out[i] = s
	}
	return out
}

// CutEdge насыщенное ребро минимального разреза
type CutEdge struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	Capacity Capacity `json:"capacity"`
}

// MinCut минимальный s-t разрез после завершения алгоритма
type MinCut struct {
	SourceSide []int     `json:"source_side"`
	SinkSide   []int     `json:"sink_side"`
	Edges      []CutEdge `json:"edges"`
	Capacity   Capacity  `json:"capacity"`
}

// Trace полная трасса запуска: вход, итог и журнал шагов
type Trace struct {
	Source   int      `json:"source"`
	Sink     int      `json:"sink"`
	Original Matrix   `json:"original"`
	Residual Matrix   `json:"residual,omitempty"`
	MaxFlow  Capacity `json:"max_flow"`
	Steps    StepLog  `json:"steps"`
	MinCut   *MinCut  `json:"min_cut,omitempty"`
}

// Vertices число вершин сети
func (t *Trace) Vertices() int {
	return t.Original.Size()
}

// StepCount число аугментаций
func (t *Trace) StepCount() int {
	return len(t.Steps)
}
