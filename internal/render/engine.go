package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"overlayd/internal/config"
	"overlayd/internal/fileutil"
	"overlayd/internal/logging"
	"overlayd/internal/media/ffmpeg"
	"overlayd/internal/media/ffprobe"
	"overlayd/internal/overlay"
	"overlayd/internal/queue"
)

// LogFileName is the per-job transcoder diagnostic log inside the working directory.
const LogFileName = "ffmpeg.log"

// Engine drives one render job from queued to a terminal state. Each active
// job runs on its own goroutine; a buffered-channel semaphore bounds how
// many transcoder processes run at once.
type Engine struct {
	cfg    *config.Config
	store  queue.Store
	runner *ffmpeg.Runner
	logger *slog.Logger
	slots  chan struct{}
	wg     sync.WaitGroup
}

// NewEngine constructs an Engine using the configured concurrency limit.
func NewEngine(cfg *config.Config, store queue.Store, logger *slog.Logger) *Engine {
	limit := cfg.Render.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	return &Engine{
		cfg:    cfg,
		store:  store,
		runner: ffmpeg.NewRunner(),
		logger: logging.WithComponent(logger, "render-engine"),
		slots:  make(chan struct{}, limit),
	}
}

// Launch starts processing a job on its own goroutine and returns immediately.
func (e *Engine) Launch(ctx context.Context, jobID string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.Run(ctx, jobID)
	}()
}

// Wait blocks until all launched jobs have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Run processes one job to completion. Faults never escape: every failure
// path, including panics, lands the job in a terminal error state so one
// broken job cannot take the process down.
func (e *Engine) Run(ctx context.Context, jobID string) {
	logger := e.logger.With(logging.String(logging.FieldJobID, jobID))

	job, err := e.store.Get(ctx, jobID)
	if err != nil {
		logger.Error("failed to load job", logging.Error(err))
		return
	}
	if job == nil {
		logger.Warn("job missing from store; aborting")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("render panicked", logging.Any("panic", r))
			e.fail(ctx, logger, job, fmt.Sprintf("exception: %v", r))
			e.appendToJobLog(job, fmt.Sprintf("\nEXCEPTION: %v\n", r))
		}
	}()

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		// Shutdown before a slot freed: leave the job queued so the
		// resume supervisor restarts it on the next boot.
		return
	}

	overlaysPath := filepath.Join(job.WorkDir, overlay.SpecFileName)
	if !fileutil.Exists(overlaysPath) {
		e.fail(ctx, logger, job, "overlays.json missing")
		return
	}
	overlays, err := overlay.Load(overlaysPath)
	if err != nil {
		e.fail(ctx, logger, job, fmt.Sprintf("invalid overlays.json: %v", err))
		return
	}

	if !fileutil.Exists(job.InputPath) {
		e.fail(ctx, logger, job, "input video missing")
		return
	}

	graph := overlay.Compile(overlays, job.WorkDir)
	duration := ffprobe.Duration(ctx, e.cfg.FFmpeg.FFprobeBinary, job.InputPath)
	if duration <= 0 {
		logger.Warn("duration unknown; progress tracking disabled")
	}

	command := ffmpeg.Command{
		Binary:        e.cfg.FFmpeg.FFmpegBinary,
		Input:         job.InputPath,
		ExtraInputs:   graph.Inputs,
		FilterComplex: graph.FilterComplex,
		OutputLabel:   graph.Output,
		VideoCodec:    e.cfg.FFmpeg.VideoCodec,
		Preset:        e.cfg.FFmpeg.Preset,
		Output:        job.OutputPath,
	}

	job.StartProcessing("running ffmpeg")
	if err := e.store.Put(ctx, job); err != nil {
		logger.Error("failed to persist processing transition", logging.Error(err))
		return
	}
	logger.Info("render started",
		logging.Bool("stream_copy", command.StreamCopy()),
		logging.Int("extra_inputs", len(graph.Inputs)),
		logging.Float64("duration_seconds", duration),
	)

	logFile, err := os.Create(filepath.Join(job.WorkDir, LogFileName))
	if err != nil {
		e.fail(ctx, logger, job, fmt.Sprintf("exception: %v", err))
		return
	}

	lastPercent := 0
	onLine := func(line string) {
		elapsed, ok := ffmpeg.ParseProgress(line)
		if !ok || duration <= 0 {
			return
		}
		percent := ffmpeg.Percent(elapsed, duration)
		if percent <= lastPercent {
			return
		}
		lastPercent = percent
		job.Progress = percent
		if err := e.store.SetProgress(ctx, job.ID, percent); err != nil {
			logger.Warn("failed to persist progress", logging.Error(err))
		}
	}

	runErr := e.runner.Run(ctx, command, logFile, onLine)
	if closeErr := logFile.Close(); closeErr != nil {
		logger.Warn("failed to close transcoder log", logging.Error(closeErr))
	}

	switch {
	case runErr == nil && fileutil.Exists(job.OutputPath):
		job.Status = queue.StatusDone
		job.Progress = 100
		job.Message = "render complete"
		if err := e.store.Put(ctx, job); err != nil {
			logger.Error("failed to persist completion", logging.Error(err))
			return
		}
		logger.Info("render complete")
	case runErr == nil:
		e.fail(ctx, logger, job, fmt.Sprintf("output file missing; see %s", LogFileName))
	default:
		e.fail(ctx, logger, job, transcoderErrorMessage(runErr))
	}
}

func transcoderErrorMessage(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("ffmpeg returned %d; see %s", exitErr.ExitCode(), LogFileName)
	}
	return fmt.Sprintf("ffmpeg failed: %v; see %s", err, LogFileName)
}

func (e *Engine) fail(ctx context.Context, logger *slog.Logger, job *queue.Job, message string) {
	job.SetFailed(message)
	if err := e.store.Put(ctx, job); err != nil {
		logger.Error("failed to persist error state", logging.Error(err))
	}
	logger.Error("render failed", logging.String("reason", message))
}

func (e *Engine) appendToJobLog(job *queue.Job, text string) {
	path := filepath.Join(job.WorkDir, LogFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(text)
}
