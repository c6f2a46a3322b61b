package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/epiwatch/epiwatch/internal/adapters/engine"
	natsadapter "github.com/epiwatch/epiwatch/internal/adapters/nats"
	"github.com/epiwatch/epiwatch/internal/adapters/postgres"
	"github.com/epiwatch/epiwatch/internal/adapters/valkey"
	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/usecases"
	"github.com/epiwatch/epiwatch/internal/pkg/config"
	"github.com/epiwatch/epiwatch/internal/pkg/logging"
	"github.com/epiwatch/epiwatch/internal/pkg/metrics"
	"github.com/epiwatch/epiwatch/internal/workflows"
)

// maxConcurrentRegions caps how many regions are assessed at once so a
// large manifest cannot stampede the prediction engine.
const maxConcurrentRegions = 8

type monitor struct {
	spread   *usecases.SpreadService
	cache    *valkey.Cache
	temporal client.Client
	fallback *workflows.DispatchActivities
	ttl      int
	queue    string
}

func main() {
	cfg, err := config.Load("epiwatch-monitor")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.SetupFromEnv()

	manifestPath := cfg.Monitor.RegionsFile
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	regions, err := loadRegions(manifestPath)
	if err != nil {
		log.Fatalf("load regions: %v", err)
	}
	slog.Info("regions loaded", "count", len(regions), "manifest", manifestPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	engineClient := engine.NewClient(cfg.Engine.URL,
		time.Duration(cfg.Engine.TimeoutSeconds)*time.Second, slog.Default())

	m := &monitor{
		spread: usecases.NewSpreadService(postgres.NewOutbreakRepo(db), engineClient),
		cache:  cache,
		fallback: &workflows.DispatchActivities{
			Alerts:    postgres.NewAlertRepo(db),
			Publisher: publisher,
		},
		ttl:   cfg.Monitor.SnapshotTTL,
		queue: cfg.Temporal.TaskQueue,
	}

	// Alert dispatch prefers the durable workflow path; without a
	// Temporal server the monitor falls back to dispatching inline.
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		slog.Warn("temporal unavailable, dispatching alerts inline", "error", err)
	} else {
		m.temporal = tc
		defer tc.Close()
	}

	// Event-driven reassessment: a new report inside a monitored region
	// refreshes that region's snapshot without waiting for the next tick.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("report subscription unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeReports(ctx, func(ctx context.Context, report *domain.OutbreakReport) error {
			for _, r := range regions {
				if r.Bounds.Contains(report.Lat, report.Lng) {
					slog.Info("report landed in monitored region, reassessing",
						"region", r.Name, "disease", report.Disease)
					m.assess(ctx, r)
				}
			}
			return nil
		})
		if err != nil {
			slog.Warn("report subscription failed", "error", err)
		}
	}

	interval := time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("monitor started", "interval", interval.String())

	// First sweep immediately, then on every tick.
	m.sweep(ctx, regions)
	for {
		select {
		case <-ticker.C:
			m.sweep(ctx, regions)
		case sig := <-quit:
			slog.Info("monitor stopping", "signal", sig.String())
			cancel()
			return
		}
	}
}

// sweep assesses every region, a bounded number at a time.
func (m *monitor) sweep(ctx context.Context, regions []Region) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentRegions)

	for _, r := range regions {
		wg.Add(1)
		sem <- struct{}{}
		go func(r Region) {
			defer wg.Done()
			defer func() { <-sem }()
			m.assess(ctx, r)
		}(r)
	}

	wg.Wait()
}

func (m *monitor) assess(ctx context.Context, r Region) {
	pred, err := m.spread.PredictSpread(ctx, *r.Bounds, r.Disease)
	if err != nil {
		metrics.MonitorRuns.WithLabelValues(r.Name, "error").Inc()
		slog.Error("assessment failed", "region", r.Name, "error", err)
		return
	}

	if data, err := json.Marshal(pred); err == nil {
		if err := m.cache.Set(ctx, "spread:latest:"+r.Name, data, m.ttl); err != nil {
			slog.Warn("snapshot write failed", "region", r.Name, "error", err)
		}
	}

	if len(pred.HighRiskAreas) == 0 {
		metrics.MonitorRuns.WithLabelValues(r.Name, "ok").Inc()
		slog.Info("region assessed", "region", r.Name,
			"outbreaks", len(pred.CurrentOutbreaks), "highRisk", 0)
		return
	}

	input := workflows.DispatchInput{
		Region:    r.Name,
		Message:   strings.Join(pred.AlertSummary, "; "),
		RiskLevel: "high",
	}
	if err := m.dispatch(ctx, input); err != nil {
		metrics.MonitorRuns.WithLabelValues(r.Name, "dispatch_error").Inc()
		slog.Error("alert dispatch failed", "region", r.Name, "error", err)
		return
	}

	metrics.MonitorRuns.WithLabelValues(r.Name, "alerted").Inc()
	slog.Info("region assessed", "region", r.Name,
		"outbreaks", len(pred.CurrentOutbreaks), "highRisk", len(pred.HighRiskAreas))
}

// dispatch starts the alert workflow, or runs the same steps inline
// when no Temporal client is available.
func (m *monitor) dispatch(ctx context.Context, input workflows.DispatchInput) error {
	if m.temporal != nil {
		opts := client.StartWorkflowOptions{
			ID:        fmt.Sprintf("alert-dispatch-%s-%d", slugify(input.Region), time.Now().Unix()),
			TaskQueue: m.queue,
		}
		_, err := m.temporal.ExecuteWorkflow(ctx, opts, workflows.AlertDispatchWorkflow, input)
		return err
	}

	alertID, err := m.fallback.RecordAlert(ctx, input)
	if err != nil {
		return err
	}
	if err := m.fallback.PublishAlert(ctx, alertID, input); err != nil {
		_ = m.fallback.DeleteAlert(ctx, alertID)
		return err
	}
	return m.fallback.MarkAlertDelivered(ctx, alertID)
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
