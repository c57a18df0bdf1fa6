package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphNodes   = "graph.nodes"
	AttrGraphEdges   = "graph.edges"
	AttrGraphVersion = "graph.version"
	AttrSourceNodeID = "graph.source_node_id"
	AttrTargetNodeID = "graph.target_node_id"

	// Запрос маршрута
	AttrProfile    = "query.profile"
	AttrRain       = "query.rain"
	AttrKRequested = "query.k_requested"
	AttrKReturned  = "query.k_returned"

	// Алгоритм
	AttrAlgorithm     = "algorithm.name"
	AttrIterations    = "algorithm.iterations"
	AttrTotalCost     = "algorithm.total_cost"
	AttrTransferCount = "algorithm.transfer_count"

	// Валидация
	AttrValidationLevel  = "validation.level"
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"

	// Анализ улучшений рёбер
	AttrImprovementsFound = "analysis.improvements_found"
	AttrSampleSize        = "analysis.sample_size"

	// Кэш
	AttrCacheHit = "cache.hit"
	AttrCacheKey = "cache.key"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(nodes, edges int, version string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.String(AttrGraphVersion, version),
	}
}

// QueryAttributes возвращает атрибуты запроса маршрута
func QueryAttributes(sourceID, targetID, profile string, rain bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSourceNodeID, sourceID),
		attribute.String(AttrTargetNodeID, targetID),
		attribute.String(AttrProfile, profile),
		attribute.Bool(AttrRain, rain),
	}
}

// AlgorithmAttributes возвращает атрибуты выполнения алгоритма
func AlgorithmAttributes(name string, iterations int, totalCost float64, transfers int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, name),
		attribute.Int(AttrIterations, iterations),
		attribute.Float64(AttrTotalCost, totalCost),
		attribute.Int(AttrTransferCount, transfers),
	}
}

// ValidationAttributes возвращает атрибуты валидации графа
func ValidationAttributes(level string, errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrValidationLevel, level),
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}

// AnalysisAttributes возвращает атрибуты анализа улучшений рёбер
func AnalysisAttributes(found, sampleSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrImprovementsFound, found),
		attribute.Int(AttrSampleSize, sampleSize),
	}
}

// CacheAttributes возвращает атрибуты обращения к кэшу
func CacheAttributes(key string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheKey, key),
		attribute.Bool(AttrCacheHit, hit),
	}
}
