package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"overlayd/internal/config"
	"overlayd/internal/logging"
	"overlayd/internal/queue"
	"overlayd/internal/render"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      queue.Store
	engine     *render.Engine
	supervisor *render.Supervisor
	api        *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store queue.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	engine := render.NewEngine(cfg, store, logger)
	lockPath := filepath.Join(cfg.Paths.LogDir, "overlayd.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		store:      store,
		engine:     engine,
		supervisor: render.NewSupervisor(store, engine, logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, resumes interrupted jobs, and begins
// serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another overlayd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.ctx, d.cancel = runCtx, cancel
	d.mu.Unlock()
	if err := d.supervisor.Resume(runCtx); err != nil {
		d.teardown()
		return fmt.Errorf("resume jobs: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.teardown()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("overlayd daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) teardown() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	d.mu.Unlock()
	_ = d.lock.Unlock()
}

// Stop shuts down the API, cancels active renders, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	d.mu.Unlock()
	d.api.stop()
	d.engine.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("overlayd daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon lifecycle is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API listener address, or empty when not serving.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Submit persists a new job record and launches its render.
func (d *Daemon) Submit(job *queue.Job) error {
	d.mu.Lock()
	ctx := d.ctx
	d.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.store.Put(ctx, job); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	d.logger.Info("job queued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("input", job.InputPath),
	)
	d.engine.Launch(ctx, job.ID)
	return nil
}
