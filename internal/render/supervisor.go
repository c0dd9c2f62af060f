package render

import (
	"context"
	"fmt"
	"log/slog"

	"overlayd/internal/fileutil"
	"overlayd/internal/logging"
	"overlayd/internal/queue"
)

// Supervisor restarts interrupted work after a daemon restart. Jobs left in
// queued or processing are re-launched from scratch; a job whose working
// directory vanished while the daemon was down is failed instead.
type Supervisor struct {
	store  queue.Store
	engine *Engine
	logger *slog.Logger
}

// NewSupervisor wires a resume supervisor over the store and engine.
func NewSupervisor(store queue.Store, engine *Engine, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		store:  store,
		engine: engine,
		logger: logging.WithComponent(logger, "resume"),
	}
}

// Resume scans for unfinished jobs and relaunches each one.
func (s *Supervisor) Resume(ctx context.Context) error {
	jobs, err := s.store.ListUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("list unfinished jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}
	s.logger.Info("resuming unfinished jobs", logging.Int("count", len(jobs)))

	for _, job := range jobs {
		logger := s.logger.With(logging.String(logging.FieldJobID, job.ID))
		if job.WorkDir == "" || !fileutil.Exists(job.WorkDir) {
			job.SetFailed("job folder missing on resume")
			if err := s.store.Put(ctx, job); err != nil {
				logger.Error("failed to persist resume failure", logging.Error(err))
				continue
			}
			logger.Warn("working directory gone; job failed")
			continue
		}
		logger.Info("relaunching job", logging.String("status", string(job.Status)))
		s.engine.Launch(ctx, job.ID)
	}
	return nil
}
