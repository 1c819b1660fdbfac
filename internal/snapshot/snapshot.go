// Package snapshot exports the registry's state as JSONL, both on demand and
// on a schedule, to object storage or local files.
package snapshot

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/tether/internal/store"
)

// Destination receives a complete JSONL snapshot payload.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// Scheduler snapshots the store to every destination once at startup and
// then at a fixed interval.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start launches the snapshot loop in a background goroutine.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.snapshot(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.snapshot(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight snapshot to finish.
// Safe to call without a prior Start.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) snapshot(ctx context.Context) {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.logger.Error("snapshot export failed", "err", err)
		return
	}

	// One destination failing must not starve the others.
	failed := 0
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, buf.Bytes()); err != nil {
			failed++
			s.logger.Error("snapshot write failed", "destination", destName(dest), "err", err)
		}
	}
	s.logger.Info("snapshot completed",
		"bytes", buf.Len(),
		"destinations", len(s.destinations),
		"failed", failed)
}

func destName(d Destination) string {
	switch d.(type) {
	case *S3Destination:
		return "s3"
	case *FileDestination:
		return "file"
	default:
		return "unknown"
	}
}
