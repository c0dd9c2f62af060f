package config

const (
	defaultJobsDir       = "~/.local/share/overlayd/jobs"
	defaultLogDir        = "~/.local/share/overlayd/logs"
	defaultAPIBind       = "127.0.0.1:8090"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultVideoCodec    = "libx264"
	defaultPreset        = "fast"
	defaultMaxConcurrent = 2
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobsDir: defaultJobsDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			Preset:        defaultPreset,
		},
		Render: Render{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
