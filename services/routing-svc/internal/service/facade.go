// Package service implements the query façade (C7): node-id↔index
// translation, cache lookup/population, metrics/tracing instrumentation,
// then delegation to the routing engines in internal/algorithms,
// internal/itinerary, and internal/analysis.
//
// The façade is the only layer that logs, traces, and touches the cache —
// the core engines (C3–C6) stay pure and never do any of that.
package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"transitroute/pkg/apperror"
	"transitroute/pkg/cache"
	"transitroute/pkg/domain"
	"transitroute/pkg/logger"
	"transitroute/pkg/metrics"
	"transitroute/pkg/telemetry"
	"transitroute/services/routing-svc/internal/algorithms"
	"transitroute/services/routing-svc/internal/analysis"
	"transitroute/services/routing-svc/internal/itinerary"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the façade's query-time behavior, sourced from the loaded
// pkg/config.RoutingConfig by the caller (cmd/routing-svc).
type Config struct {
	// QueryTimeout bounds a single Shortest/KShortest/Analyse call.
	QueryTimeout time.Duration

	// KMax is the hard ceiling on the k a caller may request from
	// Alternatives; requests above it are clamped, never rejected.
	KMax int

	// AnalysisMaxResults is the length limit of an Analyse result when the
	// caller passes maxResults <= 0; an explicit positive limit is used as
	// given, even when it is larger.
	AnalysisMaxResults int

	// ResultTTL is the TTL applied to cache entries this façade writes.
	ResultTTL time.Duration
}

// DefaultConfig returns a Config matching domain's own historical defaults.
func DefaultConfig() *Config {
	return &Config{
		QueryTimeout:       2 * time.Second,
		KMax:               domain.DefaultKMax,
		AnalysisMaxResults: 20,
		ResultTTL:          3 * time.Minute,
	}
}

// =============================================================================
// Statistics
// =============================================================================

// facadeStats holds atomic counters surfaced by Stats.
type facadeStats struct {
	requestsTotal  atomic.Int64
	requestsFailed atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
}

// Stats is a point-in-time snapshot of facadeStats.
type Stats struct {
	RequestsTotal  int64
	RequestsFailed int64
	CacheHits      int64
	CacheMisses    int64
}

// =============================================================================
// Facade
// =============================================================================

// Facade is the query surface the CLI (cmd/routing-svc) drives. It owns one
// immutable domain.Graph for its lifetime; serving a different graph means
// constructing a new Facade, never mutating this one. cmd/routing-svc loads
// the graph once at start-up and does not reload it (no SIGHUP handling).
type Facade struct {
	graph        *domain.Graph
	graphVersion string

	cache   cache.Cache
	metrics *metrics.Metrics
	config  *Config

	stats facadeStats
}

// New creates a Facade over graph. graphVersion identifies this graph build
// for cache-key namespacing (see pkg/cache/hasher.go) — two Facades built
// from different data must never share cache entries. c may be nil, in
// which case caching is a no-op.
func New(graph *domain.Graph, graphVersion string, c cache.Cache, cfg *Config) *Facade {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	f := &Facade{
		graph:        graph,
		graphVersion: graphVersion,
		cache:        c,
		metrics:      metrics.Get(),
		config:       cfg,
	}

	f.metrics.RecordGraphSize(graph.NodeCount(), graph.EdgeCount())
	return f
}

// Stats returns a snapshot of the façade's request counters.
func (f *Facade) Stats() Stats {
	return Stats{
		RequestsTotal:  f.stats.requestsTotal.Load(),
		RequestsFailed: f.stats.requestsFailed.Load(),
		CacheHits:      f.stats.cacheHits.Load(),
		CacheMisses:    f.stats.cacheMisses.Load(),
	}
}

// =============================================================================
// resolveQuery: shared id/profile/k validation and cost-params construction
// =============================================================================

type resolvedQuery struct {
	sourceIdx int32
	targetIdx int32
	params    domain.CostParams
}

func (f *Facade) resolveQuery(sourceID, targetID string, profile domain.ProfileName, rain bool) (resolvedQuery, error) {
	sourceIdx, ok := f.graph.IndexOf(sourceID)
	if !ok {
		return resolvedQuery{}, apperror.NewWithField(apperror.CodeUnknownNode, "source node not found", "source_id").WithDetails("node_id", sourceID)
	}
	targetIdx, ok := f.graph.IndexOf(targetID)
	if !ok {
		return resolvedQuery{}, apperror.NewWithField(apperror.CodeUnknownNode, "target node not found", "target_id").WithDetails("node_id", targetID)
	}
	if sourceIdx == targetIdx {
		return resolvedQuery{}, apperror.ErrSourceEqualsSink
	}

	params, ok := domain.ProfileParams(profile, rain)
	if !ok {
		return resolvedQuery{}, apperror.NewWithField(apperror.CodeUnknownProfile, "unrecognised mobility profile", "profile").WithDetails("profile", string(profile))
	}

	return resolvedQuery{sourceIdx: sourceIdx, targetIdx: targetIdx, params: params}, nil
}

func (f *Facade) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.config.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.config.QueryTimeout)
}

// =============================================================================
// Route (single best path)
// =============================================================================

// Route returns the lowest-cost route between sourceID and targetID under
// profile, per §4.3. An unreachable target is a zero-value domain.Route,
// never an error.
func (f *Facade) Route(ctx context.Context, sourceID, targetID string, profile domain.ProfileName, rain bool) (domain.Route, error) {
	requestID := uuid.New().String()
	log := logger.WithRequestID(requestID).With("operation", "route")

	var result domain.Route
	start := time.Now()
	f.stats.requestsTotal.Add(1)

	err := telemetry.TraceOperation(ctx, "route", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx, telemetry.QueryAttributes(sourceID, targetID, string(profile), rain)...)

		q, err := f.resolveQuery(sourceID, targetID, profile, rain)
		if err != nil {
			return err
		}

		key := cache.RouteQueryKey(f.graphVersion, q.sourceIdx, q.targetIdx, string(profile), rain)
		if cached, ok := f.lookupRoute(ctx, key); ok {
			f.metrics.RecordCacheHit("route")
			f.stats.cacheHits.Add(1)
			result = cached
			return nil
		}
		f.metrics.RecordCacheMiss("route")
		f.stats.cacheMisses.Add(1)

		qctx, cancel := f.withTimeout(ctx)
		defer cancel()

		r := algorithms.Shortest(qctx, f.graph, q.sourceIdx, q.targetIdx, q.params, algorithms.Options{})
		if r.TimedOut {
			return apperror.ErrTimeout
		}

		result = domain.Route{Path: r.Path, TotalCost: r.TotalCost}
		f.storeRoute(ctx, key, result)
		return nil
	})

	success := err == nil
	if !success {
		f.stats.requestsFailed.Add(1)
		log.Error("route query failed", "error", err)
	}
	f.metrics.RecordRequest("route", statusLabel(success), time.Since(start))
	f.metrics.RecordQueryOperation(string(profile), success, time.Since(start), boolToPathCount(result))

	return result, err
}

// =============================================================================
// Alternatives (k-shortest loopless paths)
// =============================================================================

// Alternatives returns up to k loopless alternative routes, in nondecreasing
// cost order, per §4.4. k is clamped to [1, façade's KMax].
func (f *Facade) Alternatives(ctx context.Context, sourceID, targetID string, profile domain.ProfileName, rain bool, k int) ([]domain.Route, error) {
	requestID := uuid.New().String()
	log := logger.WithRequestID(requestID).With("operation", "alternatives")

	k = clampK(k, f.config.KMax)

	var results []domain.Route
	start := time.Now()
	f.stats.requestsTotal.Add(1)

	err := telemetry.TraceOperation(ctx, "alternatives", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx, telemetry.QueryAttributes(sourceID, targetID, string(profile), rain)...)
		telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrKRequested, k))

		q, err := f.resolveQuery(sourceID, targetID, profile, rain)
		if err != nil {
			return err
		}

		key := cache.AlternativesQueryKey(f.graphVersion, q.sourceIdx, q.targetIdx, string(profile), rain, k)
		if cached, ok := f.lookupRoutes(ctx, key); ok {
			f.metrics.RecordCacheHit("alternatives")
			f.stats.cacheHits.Add(1)
			results = cached
			return nil
		}
		f.metrics.RecordCacheMiss("alternatives")
		f.stats.cacheMisses.Add(1)

		qctx, cancel := f.withTimeout(ctx)
		defer cancel()

		found := algorithms.KShortest(qctx, f.graph, q.sourceIdx, q.targetIdx, q.params, k)
		results = make([]domain.Route, 0, len(found))
		for _, r := range found {
			results = append(results, domain.Route{Path: r.Path, TotalCost: r.TotalCost})
		}
		f.storeRoutes(ctx, key, results)
		return nil
	})

	success := err == nil
	if !success {
		f.stats.requestsFailed.Add(1)
		log.Error("alternatives query failed", "error", err)
	}
	f.metrics.RecordRequest("alternatives", statusLabel(success), time.Since(start))
	f.metrics.RecordQueryOperation(string(profile), success, time.Since(start), len(results))

	return results, err
}

// =============================================================================
// Details (full itinerary)
// =============================================================================

// Details returns the rider-facing domain.Itinerary for the lowest-cost
// route between sourceID and targetID, per §4.5. An unreachable target
// yields an empty Itinerary, never an error.
func (f *Facade) Details(ctx context.Context, sourceID, targetID string, profile domain.ProfileName, rain bool) (domain.Itinerary, error) {
	requestID := uuid.New().String()
	log := logger.WithRequestID(requestID).With("operation", "details")

	var result domain.Itinerary
	start := time.Now()
	f.stats.requestsTotal.Add(1)

	err := telemetry.TraceOperation(ctx, "details", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx, telemetry.QueryAttributes(sourceID, targetID, string(profile), rain)...)

		q, err := f.resolveQuery(sourceID, targetID, profile, rain)
		if err != nil {
			return err
		}

		qctx, cancel := f.withTimeout(ctx)
		defer cancel()

		r := algorithms.Shortest(qctx, f.graph, q.sourceIdx, q.targetIdx, q.params, algorithms.Options{})
		if r.TimedOut {
			return apperror.ErrTimeout
		}

		route := domain.Route{Path: r.Path, TotalCost: r.TotalCost}
		result = itinerary.Build(f.graph, route, q.params)
		telemetry.SetAttributes(ctx, telemetry.AlgorithmAttributes("dijkstra", 0, route.TotalCost, result.Transfers)...)
		return nil
	})

	success := err == nil
	if !success {
		f.stats.requestsFailed.Add(1)
		log.Error("details query failed", "error", err)
	}
	f.metrics.RecordRequest("details", statusLabel(success), time.Since(start))

	return result, err
}

// =============================================================================
// Analyse (edge-improvement ranking)
// =============================================================================

// Analyse runs the edge-improvement analyser (C6) under profile and returns
// the ranked list, capped at maxResults (0 means use the façade default).
func (f *Facade) Analyse(ctx context.Context, profile domain.ProfileName, rain bool, maxResults int) ([]domain.EdgeImprovement, error) {
	requestID := uuid.New().String()
	log := logger.WithRequestID(requestID).With("operation", "analyse")

	if maxResults <= 0 {
		maxResults = f.config.AnalysisMaxResults
	}

	params, ok := domain.ProfileParams(profile, rain)
	if !ok {
		f.stats.requestsFailed.Add(1)
		return nil, apperror.NewWithField(apperror.CodeUnknownProfile, "unrecognised mobility profile", "profile").WithDetails("profile", string(profile))
	}

	var result []domain.EdgeImprovement
	start := time.Now()
	f.stats.requestsTotal.Add(1)

	err := telemetry.TraceOperation(ctx, "analyse", func(ctx context.Context) error {
		key := cache.EdgeAnalysisQueryKey(f.graphVersion, string(profile), rain, maxResults)
		if cached, ok := f.lookupImprovements(ctx, key); ok {
			f.metrics.RecordCacheHit("analyse")
			f.stats.cacheHits.Add(1)
			result = cached
			return nil
		}
		f.metrics.RecordCacheMiss("analyse")
		f.stats.cacheMisses.Add(1)

		qctx, cancel := f.withTimeout(ctx)
		defer cancel()

		result = analysis.Analyse(qctx, f.graph, params, maxResults)
		telemetry.SetAttributes(ctx, telemetry.AnalysisAttributes(len(result), f.graph.NodeCount())...)

		for _, imp := range result {
			f.metrics.RecordEdgeImprovements(imp.Priority.String(), 1)
		}

		f.storeImprovements(ctx, key, result)
		return nil
	})

	success := err == nil
	if !success {
		f.stats.requestsFailed.Add(1)
		log.Error("analyse query failed", "error", err)
	}
	f.metrics.RecordRequest("analyse", statusLabel(success), time.Since(start))

	return result, err
}

// =============================================================================
// Cache plumbing
// =============================================================================

func (f *Facade) lookupRoute(ctx context.Context, key string) (domain.Route, bool) {
	var r domain.Route
	if !f.cacheGet(ctx, key, &r) {
		return domain.Route{}, false
	}
	return r, true
}

func (f *Facade) storeRoute(ctx context.Context, key string, r domain.Route) {
	f.cacheSet(ctx, key, r)
}

func (f *Facade) lookupRoutes(ctx context.Context, key string) ([]domain.Route, bool) {
	var r []domain.Route
	if !f.cacheGet(ctx, key, &r) {
		return nil, false
	}
	return r, true
}

func (f *Facade) storeRoutes(ctx context.Context, key string, r []domain.Route) {
	f.cacheSet(ctx, key, r)
}

func (f *Facade) lookupImprovements(ctx context.Context, key string) ([]domain.EdgeImprovement, bool) {
	var r []domain.EdgeImprovement
	if !f.cacheGet(ctx, key, &r) {
		return nil, false
	}
	return r, true
}

func (f *Facade) storeImprovements(ctx context.Context, key string, r []domain.EdgeImprovement) {
	f.cacheSet(ctx, key, r)
}

// cacheGet fetches key and JSON-decodes it into dst. Any cache error
// (including ErrKeyNotFound) is treated as a miss; caching is an
// optimisation, never a correctness dependency.
func (f *Facade) cacheGet(ctx context.Context, key string, dst any) bool {
	if f.cache == nil {
		return false
	}
	raw, err := f.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("cache: failed to decode entry, treating as miss", "key", key, "error", err)
		return false
	}
	return true
}

func (f *Facade) cacheSet(ctx context.Context, key string, value any) {
	if f.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache: failed to encode entry, skipping write", "key", key, "error", err)
		return
	}
	if err := f.cache.Set(ctx, key, raw, f.config.ResultTTL); err != nil {
		logger.Warn("cache: failed to write entry", "key", key, "error", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func clampK(k, max int) int {
	if k < 1 {
		return 1
	}
	if max > 0 && k > max {
		return max
	}
	return k
}

func statusLabel(success bool) string {
	if success {
		return "OK"
	}
	return "ERROR"
}

func boolToPathCount(r domain.Route) int {
	if r.Found() {
		return 1
	}
	return 0
}
