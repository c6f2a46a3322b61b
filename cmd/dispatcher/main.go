package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/epiwatch/epiwatch/internal/adapters/nats"
	"github.com/epiwatch/epiwatch/internal/adapters/postgres"
	"github.com/epiwatch/epiwatch/internal/pkg/config"
	"github.com/epiwatch/epiwatch/internal/pkg/logging"
	"github.com/epiwatch/epiwatch/internal/workflows"
)

func main() {
	cfg, err := config.Load("epiwatch-dispatcher")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.SetupFromEnv()

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.AlertDispatchWorkflow)
	w.RegisterActivity(&workflows.DispatchActivities{
		Alerts:    postgres.NewAlertRepo(db),
		Publisher: publisher,
	})

	slog.Info("alert dispatch worker starting", "taskQueue", cfg.Temporal.TaskQueue)

	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
