// Package daemon coordinates the long-running overlayd process.
//
// It wires configuration, the job store, the render engine, and the resume
// supervisor into a single lifecycle with flock-based locking to prevent
// multiple instances, and exposes the HTTP API for job submission, status
// polling, and result download.
//
// Keep orchestration logic here: rendering itself lives in internal/render
// while the daemon focuses on startup, shutdown, and the outward surface.
package daemon
