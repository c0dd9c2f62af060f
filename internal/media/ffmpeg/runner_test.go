package ffmpeg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestRunStreamsLinesAndLog(t *testing.T) {
	stub := writeStub(t, `#!/bin/sh
echo "frame=1 time=00:00:01.00" >&2
echo "frame=2 time=00:00:02.00" >&2
exit 0
`)
	cmd := Command{Binary: stub, Input: "in.mp4", Output: "out.mp4"}

	var log bytes.Buffer
	var lines []string
	err := NewRunner().Run(context.Background(), cmd, &log, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	logged := log.String()
	if !strings.Contains(logged, "Running transcoder command:") {
		t.Fatalf("log missing command header: %q", logged)
	}
	if !strings.Contains(logged, "-c copy out.mp4") {
		t.Fatalf("log missing command line: %q", logged)
	}
	if !strings.Contains(logged, "time=00:00:02.00") {
		t.Fatalf("log missing diagnostic line: %q", logged)
	}
}

func TestRunReturnsProcessError(t *testing.T) {
	stub := writeStub(t, `#!/bin/sh
echo "boom" >&2
exit 3
`)
	cmd := Command{Binary: stub, Input: "in.mp4", Output: "out.mp4"}

	var log bytes.Buffer
	err := NewRunner().Run(context.Background(), cmd, &log, nil)
	if err == nil {
		t.Fatal("expected process error")
	}
	if !strings.Contains(log.String(), "boom") {
		t.Fatalf("diagnostics not logged before failure: %q", log.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	cmd := Command{Binary: filepath.Join(t.TempDir(), "absent"), Input: "in.mp4", Output: "out.mp4"}
	if err := NewRunner().Run(context.Background(), cmd, nil, nil); err == nil {
		t.Fatal("expected start error for missing binary")
	}
}
