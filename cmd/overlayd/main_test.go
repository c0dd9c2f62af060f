package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatusCell(t *testing.T) {
	if got := statusCell("done", false); got != "done" {
		t.Fatalf("plain cell = %q", got)
	}
	colored := statusCell("error", true)
	if !strings.Contains(colored, "error") || !strings.HasPrefix(colored, ansiRed) {
		t.Fatalf("colored cell = %q", colored)
	}
	if got := statusCell("unknown", true); got != "unknown" {
		t.Fatalf("unknown status should stay uncolored, got %q", got)
	}
}

func TestRenderJobsTable(t *testing.T) {
	out := renderJobsTable([][]string{
		{"a", "done", "100%", "render complete", "2026-08-30 12:00:00"},
		{"b", "queued", "0%", "queued", "2026-08-30 12:01:00"},
	})
	if !strings.Contains(out, "JOB") || !strings.Contains(out, "render complete") {
		t.Fatalf("table output missing content:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample missing [paths] section:\n%s", data)
	}

	// Second run without --overwrite must refuse.
	cmd = newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
