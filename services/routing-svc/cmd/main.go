// Package main is the entry point for routing-svc.
//
// routing-svc computes accessible, resilient point-to-point routes across
// an urban multimodal transit graph (bus, metro, rail, pedestrian) for
// travellers with distinct mobility profiles (standard, elderly, pcd)
// under dry or rainy conditions.
//
// # CLI Overview
//
// The binary exposes one subcommand per façade operation:
//
//	route         - cheapest single route between two nodes
//	alternatives  - up to k loopless alternative routes
//	details       - full rider-facing itinerary for the cheapest route
//	analyse       - ranked list of fixable edges, optionally exported to .xlsx
//	serve-cache-warm - pre-warms the façade's result cache for a fixed
//	                    query list, then starts the health/metrics listener
//	                    and blocks until terminated
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                         CLI Layer                            │
//	│  (cmd/routing-svc - flag parsing, subcommand dispatch)        │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Façade Layer (C7)                       │
//	│  (internal/service/facade.go - Facade)                       │
//	│  - id<->index translation, cache lookup/population           │
//	│  - metrics/tracing instrumentation                            │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Engine Layer (C3-C6)                    │
//	│  (internal/algorithms, internal/itinerary, internal/analysis)│
//	├─────────────────────────────────────────────────────────────┤
//	│                      Graph Layer (C1-C2)                     │
//	│  (pkg/domain - Graph, CostParams)                             │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Ingestion Layer                         │
//	│  (internal/ingest/csv, internal/ingest/postgres)              │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: TRANSITROUTE_)
//  2. Config files (config.yaml, config/config.yaml, /etc/transitroute/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	TRANSITROUTE_APP_NAME              - Service name (default: routing-svc)
//	TRANSITROUTE_APP_ENVIRONMENT       - development, staging, production
//
//	# Graph ingestion
//	TRANSITROUTE_GRAPH_SOURCE          - csv or postgres (default: csv)
//	TRANSITROUTE_GRAPH_NODES_PATH      - node CSV path (csv source)
//	TRANSITROUTE_GRAPH_EDGES_PATH      - edge CSV path (csv source)
//
//	# Routing
//	TRANSITROUTE_ROUTING_K_MAX              - ceiling on alternatives k
//	TRANSITROUTE_ROUTING_QUERY_TIMEOUT      - per-query timeout
//	TRANSITROUTE_ROUTING_TRANSFER_PENALTY   - validated (>= 0) but not applied;
//	                                          costs use domain.DefaultTransferPenalty
//
//	# Cache
//	TRANSITROUTE_CACHE_DRIVER          - memory or redis
//	TRANSITROUTE_CACHE_DEFAULT_TTL     - result cache TTL
//
//	# Observability
//	TRANSITROUTE_LOG_LEVEL             - debug, info, warn, error
//	TRANSITROUTE_METRICS_ENABLED       - Prometheus metrics on/off
//	TRANSITROUTE_TRACING_ENABLED       - OpenTelemetry tracing on/off
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"transitroute/pkg/apperror"
	"transitroute/pkg/cache"
	"transitroute/pkg/config"
	"transitroute/pkg/database"
	"transitroute/pkg/domain"
	"transitroute/pkg/logger"
	"transitroute/pkg/metrics"
	"transitroute/pkg/telemetry"
	"transitroute/services/routing-svc/internal/analysis"
	csvingest "transitroute/services/routing-svc/internal/ingest/csv"
	pgingest "transitroute/services/routing-svc/internal/ingest/postgres"
	"transitroute/services/routing-svc/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		provider, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Error("failed to initialise tracing", "error", err)
			os.Exit(1)
		}
		defer provider.Shutdown(ctx) //nolint:errcheck
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)

	graph, graphVersion, err := loadGraph(ctx, cfg)
	if err != nil {
		logger.Error("failed to load graph", "error", err)
		os.Exit(1)
	}
	logger.Info("graph loaded", "nodes", graph.NodeCount(), "edges", graph.EdgeCount(), "version", graphVersion)

	c, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Error("failed to initialise cache", "error", err)
		os.Exit(1)
	}
	defer c.Close() //nolint:errcheck

	facade := service.New(graph, graphVersion, c, &service.Config{
		QueryTimeout:       cfg.Routing.QueryTimeout,
		KMax:               cfg.Routing.KMax,
		AnalysisMaxResults: cfg.Routing.AnalysisMaxResults,
		ResultTTL:          cfg.Cache.DefaultTTL,
	})

	cmd := os.Args[1]
	args := os.Args[2:]

	var runErr error
	switch cmd {
	case "route":
		runErr = runRoute(ctx, facade, args)
	case "alternatives":
		runErr = runAlternatives(ctx, facade, args)
	case "details":
		runErr = runDetails(ctx, facade, args)
	case "analyse":
		runErr = runAnalyse(ctx, facade, cfg, args)
	case "serve-cache-warm":
		runErr = runServeCacheWarm(ctx, facade, cfg, args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `routing-svc: accessible multimodal route queries

Usage:
  routing-svc route         -from ID -to ID [-profile standard|elderly|pcd] [-rain]
  routing-svc alternatives  -from ID -to ID [-profile ...] [-rain] [-k N]
  routing-svc details       -from ID -to ID [-profile ...] [-rain]
  routing-svc analyse       [-profile ...] [-rain] [-limit N] [-xlsx PATH]
  routing-svc serve-cache-warm [-queries PATH]`)
}

func loadGraph(ctx context.Context, cfg *config.Config) (*domain.Graph, string, error) {
	var nodes []domain.NodeRecord
	var edges []domain.EdgeRecord
	var err error

	switch cfg.Graph.Source {
	case "postgres":
		db, dbErr := database.NewPostgresDB(ctx, &cfg.Database)
		if dbErr != nil {
			return nil, "", dbErr
		}
		defer db.Close()

		if migErr := database.RunMigrations(ctx, db.Pool(), &cfg.Database, pgingest.Migrations, pgingest.MigrationsDir); migErr != nil {
			return nil, "", migErr
		}

		nodes, edges, err = pgingest.Load(ctx, db)
	default:
		nodes, edges, err = csvingest.LoadFiles(cfg.Graph.NodesPath, cfg.Graph.EdgesPath)
	}
	if err != nil {
		return nil, "", err
	}

	graph, buildErr := domain.BuildGraph(nodes, edges)
	if buildErr != nil {
		return nil, "", buildErr
	}

	return graph, graphVersionOf(cfg, graph), nil
}

// graphVersionOf derives a cache-namespacing version string from the
// configured source, the graph size and a hash of every node and edge; it
// changes whenever the ingested data does, which is all cache-key
// namespacing needs (see hasher.go).
func graphVersionOf(cfg *config.Config, graph *domain.Graph) string {
	var buf bytes.Buffer
	for i := int32(0); i < int32(graph.NodeCount()); i++ {
		fmt.Fprintf(&buf, "%+v\n", graph.NodeByIndex(i))
		for _, e := range graph.Outgoing(i) {
			fmt.Fprintf(&buf, "%+v\n", e)
		}
	}
	return fmt.Sprintf("%s:%d:%d:%s", cfg.Graph.Source, graph.NodeCount(), graph.EdgeCount(), cache.ShortHash(buf.Bytes()))
}

func parseProfileFlags(fs *flag.FlagSet) (*string, *bool) {
	profile := fs.String("profile", string(domain.ProfileStandard), "mobility profile: standard, elderly, pcd")
	rain := fs.Bool("rain", false, "rainy-condition cost weighting")
	return profile, rain
}

func runRoute(ctx context.Context, f *service.Facade, args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	from := fs.String("from", "", "source node id")
	to := fs.String("to", "", "target node id")
	profile, rain := parseProfileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	route, err := f.Route(ctx, *from, *to, domain.ProfileName(*profile), *rain)
	if err != nil {
		return err
	}

	return printJSON(route)
}

func runAlternatives(ctx context.Context, f *service.Facade, args []string) error {
	fs := flag.NewFlagSet("alternatives", flag.ExitOnError)
	from := fs.String("from", "", "source node id")
	to := fs.String("to", "", "target node id")
	k := fs.Int("k", domain.DefaultKMax, "number of alternative routes")
	profile, rain := parseProfileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	routes, err := f.Alternatives(ctx, *from, *to, domain.ProfileName(*profile), *rain, *k)
	if err != nil {
		return err
	}

	return printJSON(routes)
}

func runDetails(ctx context.Context, f *service.Facade, args []string) error {
	fs := flag.NewFlagSet("details", flag.ExitOnError)
	from := fs.String("from", "", "source node id")
	to := fs.String("to", "", "target node id")
	profile, rain := parseProfileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	itin, err := f.Details(ctx, *from, *to, domain.ProfileName(*profile), *rain)
	if err != nil {
		return err
	}

	return printJSON(itin)
}

func runAnalyse(ctx context.Context, f *service.Facade, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("analyse", flag.ExitOnError)
	limit := fs.Int("limit", 0, "max results (0 = façade default)")
	xlsxPath := fs.String("xlsx", "", "write the ranked list to this .xlsx path instead of stdout")
	profile, rain := parseProfileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	improvements, err := f.Analyse(ctx, domain.ProfileName(*profile), *rain, *limit)
	if err != nil {
		return err
	}

	if *xlsxPath != "" || cfg.Export.Enabled && *xlsxPath == "" {
		path := *xlsxPath
		if path == "" {
			path = fmt.Sprintf("%s/edge-improvements.xlsx", cfg.Export.OutputDir)
		}
		if writeErr := analysis.WriteXLSX(improvements, path, cfg.Export.SheetName); writeErr != nil {
			return writeErr
		}
		logger.Info("wrote edge-improvement report", "path", path, "count", len(improvements))
		return nil
	}

	return printJSON(improvements)
}

func runServeCacheWarm(ctx context.Context, f *service.Facade, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve-cache-warm", flag.ExitOnError)
	queriesPath := fs.String("queries", "", "JSON file listing {from,to,profile,rain} queries to pre-warm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *queriesPath != "" {
		queries, err := loadWarmQueries(*queriesPath)
		if err != nil {
			return err
		}
		for _, q := range queries {
			if _, err := f.Route(ctx, q.From, q.To, domain.ProfileName(q.Profile), q.Rain); err != nil {
				logger.Warn("cache warm query failed", "from", q.From, "to", q.To, "error", err)
			}
		}
		logger.Info("cache warm complete", "queries", len(queries))
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	logger.Info("routing-svc ready", "stats", f.Stats())
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

type warmQuery struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Profile string `json:"profile"`
	Rain    bool   `json:"rain"`
}

func loadWarmQueries(path string) ([]warmQuery, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidParameter, "reading cache-warm query file")
	}
	var queries []warmQuery
	if err := json.Unmarshal(raw, &queries); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidParameter, "parsing cache-warm query file")
	}
	return queries, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
