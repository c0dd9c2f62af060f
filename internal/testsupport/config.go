package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"overlayd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.JobsDir = filepath.Join(base, "jobs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxConcurrent overrides the render concurrency limit.
func WithMaxConcurrent(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.MaxConcurrent = limit
	}
}

// WithFFmpegScript installs a stub ffmpeg built from the given shell body
// and points the config at it. The body runs after the #!/bin/sh line with
// all command arguments available as "$@".
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FFmpeg.FFmpegBinary = StubBinary(b.t, b.baseDir, "ffmpeg", body)
	}
}

// WithFFprobeDuration installs a stub ffprobe that reports the given media
// duration for any input.
func WithFFprobeDuration(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		body := fmt.Sprintf(`printf '{"format":{"duration":"%g"},"streams":[{"codec_type":"video"},{"codec_type":"audio"}]}'`, seconds)
		b.cfg.FFmpeg.FFprobeBinary = StubBinary(b.t, b.baseDir, "ffprobe", body)
	}
}

// StubBinary writes an executable shell script under baseDir/bin and
// returns its absolute path.
func StubBinary(t testing.TB, baseDir, name, body string) string {
	t.Helper()

	binDir := filepath.Join(baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.JobsDir)
}
