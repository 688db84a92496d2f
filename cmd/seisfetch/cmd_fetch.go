package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/seisworks/seisfetch/catalog"
	"github.com/seisworks/seisfetch/core"
	"github.com/seisworks/seisfetch/internal/config"
	"github.com/seisworks/seisfetch/internal/downloader"
	"github.com/seisworks/seisfetch/internal/logging"
	"github.com/seisworks/seisfetch/internal/observability"
	"github.com/seisworks/seisfetch/model"
)

var fetchJobFile string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Plan and download waveforms for every event in a job's catalog",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchJobFile, "job", "j", "", "job file (YAML)")
	_ = fetchCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := config.LoadJob(fetchJobFile)
	if err != nil {
		return err
	}
	events, err := catalog.Read(job.Catalog)
	if err != nil {
		return err
	}
	tt, err := travelTimeModel(job.Model)
	if err != nil {
		return err
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, metrics)
	}

	client, closeClient := newFDSNClient()
	defer closeClient()

	dl := downloader.New(client,
		downloader.WithLogger(log),
		downloader.WithMetrics(metrics),
		downloader.WithWorkers(cfg.Workers),
		downloader.WithRoutingEndpoint(cfg.RoutingEndpoint),
	)

	planner := core.NewPlanner(tt)
	wc := job.WindowConfig()
	restrictions := job.DownloadRestrictions()
	storage := job.DownloadStorage()

	log.Info(ctx, "fetch starting",
		logging.String("catalog", job.Catalog),
		logging.Int("events", len(events)),
		logging.String("model", wc.ModelName),
	)

	var total downloader.Stats
	for _, ev := range events {
		if ctx.Err() != nil {
			log.Warn(ctx, "fetch interrupted", logging.Err(ctx.Err()))
			break
		}

		origin, ok := ev.PreferredOriginOrFirst()
		if !ok {
			log.Warn(ctx, "skipping event without origin", logging.String("event_id", ev.ID))
			continue
		}
		eventID := model.EventID(origin)

		units, err := planner.Plan(origin, wc)
		if err != nil {
			return fmt.Errorf("planning event %s: %w", eventID, err)
		}
		metrics.ObservePlan(len(units))
		log.Info(ctx, "event planned",
			logging.String("event_id", eventID),
			logging.Int("units", len(units)),
		)

		for _, unit := range units {
			r := restrictions
			r.Start, r.End = unit.Start, unit.End

			stats, err := dl.Download(ctx, job.UnitDomain(unit), r, storage, eventID)
			if err != nil {
				return fmt.Errorf("downloading event %s: %w", eventID, err)
			}
			total.Routed += stats.Routed
			total.Kept += stats.Kept
			total.Downloaded += stats.Downloaded
			total.NoData += stats.NoData
			total.Failed += stats.Failed
			total.StationXML += stats.StationXML
			total.Bytes += stats.Bytes
		}
	}

	log.Info(ctx, "fetch finished",
		logging.Int("downloaded", total.Downloaded),
		logging.Int("nodata", total.NoData),
		logging.Int("failed", total.Failed),
		logging.Int("stationxml", total.StationXML),
		logging.Any("bytes", total.Bytes),
	)
	return nil
}

// serveMetrics exposes /metrics until the context is cancelled.
func serveMetrics(ctx context.Context, metrics *observability.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "metrics endpoint listening", logging.String("addr", cfg.MetricsAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics endpoint failed", logging.Err(err))
	}
}
