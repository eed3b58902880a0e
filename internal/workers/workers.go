package workers

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/service"
)

// Workers runs every registered background worker.
type Workers struct {
	workers []Worker
}

// NewWorkers assembles the client's background workers from the service
// layer. Currently that is the periodic sync worker alone.
func NewWorkers(services *service.ClientServices, cfg config.ClientWorkers) *Workers {
	return &Workers{
		workers: []Worker{
			newSyncWorker(services.SyncJob, cfg.SyncInterval),
		},
	}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// syncWorker drives the periodic synchronization job.
type syncWorker struct {
	job      service.ClientSyncJob
	interval time.Duration
}

func newSyncWorker(job service.ClientSyncJob, interval time.Duration) *syncWorker {
	return &syncWorker{job: job, interval: interval}
}

func (s *syncWorker) Run() {
	s.job.Start(context.Background(), s.interval)
}
