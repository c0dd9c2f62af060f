// Package logging provides slog handlers and attribute helpers shared by the
// daemon and CLI. The console handler renders compact key=value lines; the
// JSON handler is intended for machine consumption.
package logging
