package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	"github.com/unireg/registrar-api/pkg/jobs"
)

// SnapshotStore persists and retrieves full state snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap models.Snapshot) error
	Load(ctx context.Context) (models.Snapshot, bool, error)
}

// SnapshotService bridges the in-memory store and the persistence
// collaborator. Saves run off the request path through a job queue.
type SnapshotService struct {
	store   *store.Store
	repo    SnapshotStore
	metrics *MetricsService
	logger  *zap.Logger

	queue  *jobs.Queue
	ticker *time.Ticker
	done   chan struct{}
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(st *store.Store, repo SnapshotStore, metrics *MetricsService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SnapshotService{store: st, repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("snapshots", s.handleJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return s
}

// Save captures the current state and writes it through the repository.
func (s *SnapshotService) Save(ctx context.Context) error {
	var snap models.Snapshot
	s.store.View(func(st *store.State) {
		snap = st.Snapshot()
	})

	start := time.Now()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.logger.Error("snapshot save failed", zap.Error(err))
		return err
	}
	s.metrics.ObserveSnapshot(time.Since(start))
	s.logger.Info("snapshot saved",
		zap.Int("registrations", len(snap.Registrations)),
		zap.Int("users", len(snap.Users)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Restore loads the stored snapshot into the store. A missing snapshot is
// not an error; the store keeps its current contents.
func (s *SnapshotService) Restore(ctx context.Context) error {
	snap, found, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Info("no snapshot to restore")
		return nil
	}
	s.store.Update(func(st *store.State) {
		st.Restore(snap)
	})
	s.logger.Info("snapshot restored",
		zap.Int("registrations", len(snap.Registrations)),
		zap.Int("users", len(snap.Users)))
	return nil
}

// StartPeriodic begins background snapshot saves on the given interval.
func (s *SnapshotService) StartPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.queue.Start(ctx)
	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-s.ticker.C:
				if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "snapshot.save"}); err != nil {
					s.logger.Warn("failed to enqueue snapshot job", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts periodic saves and drains the queue workers.
func (s *SnapshotService) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.done != nil {
		close(s.done)
	}
	s.queue.Stop()
}

func (s *SnapshotService) handleJob(ctx context.Context, job jobs.Job) error {
	return s.Save(ctx)
}
