package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"overlayd/internal/config"
	"overlayd/internal/daemon"
	"overlayd/internal/logging"
	"overlayd/internal/queue"
)

func runDaemon(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, recovered, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	if recovered {
		logger.Warn("job database was unreadable; starting with an empty store",
			logging.String("preserved", store.Path()+".corrupt"))
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("overlayd shutting down")
	d.Stop()
	return nil
}
