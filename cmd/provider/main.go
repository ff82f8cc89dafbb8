// Package main is the entry point for the liquidity data provider.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	liquidityApp "github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/app"
	liquidityDomain "github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/infra/quoteapi"
	volumeApp "github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/app"
	volumeDomain "github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/infra/ethereum"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apm"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/asset"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/config"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/health"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/logger"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/metrics"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/ratelimit"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/retry"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("data-provider %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting liquidity data provider",
		"version", version,
		"environment", cfg.App.Environment,
	)

	if cfg.Telemetry.Enabled {
		meterProvider, err := metrics.NewProvider(cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		defer shutdownWithTimeout(meterProvider.Shutdown)

		scrape := metrics.NewScrapeServer(cfg.Telemetry.PrometheusPort)
		go func() {
			if err := scrape.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "metrics server failed", "error", err)
			}
		}()
		defer shutdownWithTimeout(scrape.Shutdown)

		traceProvider, err := apm.NewTraceProvider(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdownWithTimeout(traceProvider.Shutdown)
	}

	quoteClient, err := quoteapi.NewClient(quoteapi.ClientConfig{
		BaseURL:          cfg.Provider.BaseURL,
		RequestTimeout:   cfg.Provider.RequestTimeout,
		SenderAddress:    cfg.Provider.SenderAddress,
		RecipientAddress: cfg.Provider.RecipientAddress,
	}, log)
	if err != nil {
		return fmt.Errorf("create quote client: %w", err)
	}

	limiter := ratelimit.New(cfg.Provider.RequestsPerSecond)
	policy := retry.Policy{
		MaxRetries: cfg.Provider.MaxRetries,
		BaseDelay:  cfg.Provider.BaseBackoff,
		MaxDelay:   cfg.Provider.MaxBackoff,
	}

	estimator := liquidityApp.NewDepthEstimator(quoteClient, limiter, policy, log,
		liquidityApp.WithMaxUnits(cfg.Depth.MaxUnits),
		liquidityApp.WithMaxIterations(cfg.Depth.MaxIterations),
	)

	if cfg.Telemetry.Enabled {
		healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
		healthServer.RegisterCheck("rate_budget", func(ctx context.Context) (bool, string) {
			return true, fmt.Sprintf("%.2f tokens available", limiter.Tokens())
		})
		go func() {
			if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "health server failed", "error", err)
			}
		}()
		defer shutdownWithTimeout(healthServer.Stop)
	}

	routes, err := resolveRoutes(cfg)
	if err != nil {
		return fmt.Errorf("resolve routes: %w", err)
	}

	out := newReport()

	// Independent routes may probe in parallel; the shared limiter keeps
	// the aggregate call rate under the ceiling. A route's failure only
	// drops that route from the report.
	depths := make([]*liquidityDomain.RouteDepth, len(routes))
	g, gctx := errgroup.WithContext(ctx)
	for i, route := range routes {
		g.Go(func() error {
			depth, err := estimator.EstimateDepth(gctx, route, cfg.Depth.ThresholdsBps)
			if err != nil {
				log.Warn(gctx, "depth search incomplete", "route", route.String(), "error", err)
			}
			if len(depth.Thresholds) > 0 {
				depths[i] = &depth
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, d := range depths {
		if d != nil {
			out.Routes = append(out.Routes, newRouteReport(*d))
		}
	}

	if cfg.Volume.Enabled {
		volumeReport, err := collectVolume(ctx, cfg, log)
		if err != nil {
			log.Warn(ctx, "volume aggregation failed", "error", err)
		} else {
			out.Volume = volumeReport
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	log.Info(ctx, "report complete", "routes", len(out.Routes))
	return nil
}

// resolveRoutes normalizes the configured token list into a registry
// and maps configured route keys onto probeable domain routes.
func resolveRoutes(cfg *config.Config) ([]liquidityDomain.Route, error) {
	registry := asset.NewRegistry()
	for _, t := range cfg.Tokens {
		token, err := asset.NewToken(t.ChainID, t.Address, t.Symbol, t.Decimals)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(token); err != nil {
			return nil, err
		}
	}

	routes := make([]liquidityDomain.Route, 0, len(cfg.Routes))
	seen := make(map[string]struct{}, len(cfg.Routes))
	for _, r := range cfg.Routes {
		src, ok := registry.Get(r.Src)
		if !ok {
			return nil, fmt.Errorf("route source %q not in token list", r.Src)
		}
		dst, ok := registry.Get(r.Dst)
		if !ok {
			return nil, fmt.Errorf("route destination %q not in token list", r.Dst)
		}

		// A route listed twice would be probed twice; keep the first.
		pair := src.Key() + ">" + dst.Key()
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}

		routes = append(routes, liquidityDomain.Route{
			Src: toDomainAsset(src),
			Dst: toDomainAsset(dst),
		})
	}
	return routes, nil
}

func toDomainAsset(t asset.Token) liquidityDomain.Asset {
	return liquidityDomain.Asset{
		ChainID:  t.ChainID,
		AssetID:  t.Address,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}

func collectVolume(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*volumeDomain.Report, error) {
	source, err := ethereum.NewEventClient(cfg.Volume.RPCURL, cfg.Volume.TokenAddress)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	service := volumeApp.NewVolumeService(source, volumeApp.Config{
		TokenSymbol:   cfg.Volume.TokenSymbol,
		TokenDecimals: cfg.Volume.TokenDecimals,
		WindowBlocks:  cfg.Volume.WindowBlocks,
		ChunkBlocks:   cfg.Volume.ChunkBlocks,
	}, log)

	result, err := service.TotalVolume(ctx)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = fn(ctx)
}
