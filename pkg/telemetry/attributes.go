package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Сеть
	AttrNetworkVertices = "network.vertices"
	AttrNetworkEdges    = "network.edges"
	AttrNetworkSource   = "network.source"
	AttrNetworkSink     = "network.sink"

	// Запуск
	AttrRunID        = "run.id"
	AttrRunSteps     = "run.steps"
	AttrRunMaxFlow   = "run.max_flow"
	AttrRunCacheHit  = "run.cache_hit"
	AttrRunSnapshots = "run.record_snapshots"

	// Прочее
	AttrReportFormat   = "report.format"
	AttrExampleName    = "example.name"
	AttrErrorCode      = "error.code"
	AttrBatchSize      = "batch.size"
	AttrHistoryBackend = "history.backend"
)

// NetworkAttributes атрибуты входной сети
func NetworkAttributes(vertices, edges, source, sink int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrNetworkVertices, vertices),
		attribute.Int(AttrNetworkEdges, edges),
		attribute.Int(AttrNetworkSource, source),
		attribute.Int(AttrNetworkSink, sink),
	}
}

// RunAttributes атрибуты результата
func RunAttributes(steps int, maxFlow int64, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRunSteps, steps),
		attribute.Int64(AttrRunMaxFlow, maxFlow),
		attribute.Bool(AttrRunCacheHit, cacheHit),
	}
}
