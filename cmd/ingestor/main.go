package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/epiwatch/epiwatch/internal/adapters/postgres"
	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/pkg/config"
	"github.com/epiwatch/epiwatch/internal/pkg/logging"
)

// batchSize is how many reports are flushed per database round trip.
const batchSize = 500

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <reports.jsonl>")
	}

	cfg, err := config.Load("epiwatch-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.SetupFromEnv()

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("open %s: %v", os.Args[1], err)
	}
	defer f.Close()

	repo := postgres.NewOutbreakRepo(db)

	start := time.Now()
	inserted, skipped := 0, 0
	batch := make([]domain.OutbreakReport, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := repo.InsertBatch(ctx, batch); err != nil {
			log.Fatalf("insert batch: %v", err)
		}
		inserted += len(batch)
		batch = batch[:0]
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var report domain.OutbreakReport
		if err := json.Unmarshal(raw, &report); err != nil {
			slog.Warn("skipping malformed line", "line", line, "error", err)
			skipped++
			continue
		}
		if report.ReportedAt.IsZero() {
			report.ReportedAt = time.Now().UTC()
		}
		if err := report.Validate(); err != nil {
			slog.Warn("skipping invalid report", "line", line, "error", err)
			skipped++
			continue
		}

		batch = append(batch, report)
		if len(batch) == batchSize {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
	flush()

	slog.Info("ingest complete",
		"inserted", inserted,
		"skipped", skipped,
		"elapsed", time.Since(start).String(),
	)
}
