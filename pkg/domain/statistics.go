package domain

// EdgeFlow поток по ребру исходной сети
type EdgeFlow struct {
	From        int      `json:"from"`
	To          int      `json:"to"`
	Capacity    Capacity `json:"capacity"`
	Flow        Capacity `json:"flow"`
	Utilization float64  `json:"utilization"`
}

// Saturated ребро использовано полностью
func (e EdgeFlow) Saturated() bool {
	return e.Capacity > 0 && e.Flow == e.Capacity
}

// FlowStatistics статистика потока
type FlowStatistics struct {
	TotalFlow          Capacity   `json:"total_flow"`
	EdgeCount          int        `json:"edge_count"`
	ActiveEdges        int        `json:"active_edges"`
	SaturatedEdges     int        `json:"saturated_edges"`
	ZeroFlowEdges      int        `json:"zero_flow_edges"`
	AverageUtilization float64    `json:"average_utilization"`
	Flows              []EdgeFlow `json:"flows"`
}

// TraceStatistics статистика журнала шагов
type TraceStatistics struct {
	Steps              int      `json:"steps"`
	MaxFlow            Capacity `json:"max_flow"`
	LargestAugment     Capacity `json:"largest_augment"`
	SmallestAugment    Capacity `json:"smallest_augment"`
	ShortestPath       int      `json:"shortest_path"`
	LongestPath        int      `json:"longest_path"`
	AveragePathLength  float64  `json:"average_path_length"`
	AverageAugmentSize float64  `json:"average_augment_size"`
}

// EdgeFlows восстанавливает поток по рёбрам из исходной и итоговой остаточной матриц.
// flow(u,v) = max(0, original[u][v] - residual[u][v]).
func EdgeFlows(original, residual Matrix) []EdgeFlow {
	flows := make([]EdgeFlow, 0, original.EdgeCount())
	for u, row := range original {
		for v, c := range row {
			if c <= 0 {
				continue
			}
			f := c - residual[u][v]
			if f < 0 {
				f = 0
			}
			flows = append(flows, EdgeFlow{
				From:        u,
				To:          v,
				Capacity:    c,
				Flow:        f,
				Utilization: float64(f) / float64(c),
			})
		}
	}
	return flows
}

// CalculateFlowStatistics вычисляет статистику потока по рёбрам
func CalculateFlowStatistics(original, residual Matrix, source int) *FlowStatistics {
	flows := EdgeFlows(original, residual)
	stats := &FlowStatistics{
		EdgeCount: len(flows),
		Flows:     flows,
	}

	var totalUtil float64
	for _, f := range flows {
		switch {
		case f.Flow == 0:
			stats.ZeroFlowEdges++
		case f.Saturated():
			stats.SaturatedEdges++
			stats.ActiveEdges++
		default:
			stats.ActiveEdges++
		}
		totalUtil += f.Utilization

		// Чистый исходящий поток из источника
		if f.From == source {
			stats.TotalFlow += f.Flow
		}
		if f.To == source {
			stats.TotalFlow -= f.Flow
		}
	}

	if len(flows) > 0 {
		stats.AverageUtilization = totalUtil / float64(len(flows))
	}

	return stats
}

// CalculateTraceStatistics вычисляет статистику журнала аугментаций
func CalculateTraceStatistics(steps StepLog) *TraceStatistics {
	stats := &TraceStatistics{Steps: len(steps)}
	if len(steps) == 0 {
		return stats
	}

	stats.SmallestAugment = Unbounded
	stats.ShortestPath = int(^uint(0) >> 1)

	var totalEdges int
	for _, s := range steps {
		stats.MaxFlow = s.CurrentMaxFlow
		if s.PathFlow > stats.LargestAugment {
			stats.LargestAugment = s.PathFlow
		}
		if s.PathFlow < stats.SmallestAugment {
			stats.SmallestAugment = s.PathFlow
		}

		edges := len(s.Path) - 1
		if edges < 0 {
			edges = 0
		}
		totalEdges += edges
		if edges > stats.LongestPath {
			stats.LongestPath = edges
		}
		if edges < stats.ShortestPath {
			stats.ShortestPath = edges
		}
	}

	stats.AveragePathLength = float64(totalEdges) / float64(len(steps))
	stats.AverageAugmentSize = float64(stats.MaxFlow) / float64(len(steps))

	return stats
}

// UtilizationLevel классифицирует загрузку ребра
func UtilizationLevel(u float64) string {
	switch {
	case u >= CriticalUtilizationThreshold:
		return "critical"
	case u >= HighUtilizationThreshold:
		return "high"
	case u >= MediumUtilizationThreshold:
		return "medium"
	default:
		return "low"
	}
}
