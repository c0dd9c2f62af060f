package config

import "strings"

// normalize expands home-relative paths and fills empty fields with defaults.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Paths.JobsDir) == "" {
		c.Paths.JobsDir = defaults.Paths.JobsDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		c.Paths.APIBind = defaults.Paths.APIBind
	}

	for _, target := range []*string{&c.Paths.JobsDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*target)
		if err != nil {
			return err
		}
		*target = expanded
	}

	if strings.TrimSpace(c.FFmpeg.FFmpegBinary) == "" {
		c.FFmpeg.FFmpegBinary = defaults.FFmpeg.FFmpegBinary
	}
	if strings.TrimSpace(c.FFmpeg.FFprobeBinary) == "" {
		c.FFmpeg.FFprobeBinary = defaults.FFmpeg.FFprobeBinary
	}
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		c.FFmpeg.VideoCodec = defaults.FFmpeg.VideoCodec
	}
	if strings.TrimSpace(c.FFmpeg.Preset) == "" {
		c.FFmpeg.Preset = defaults.FFmpeg.Preset
	}

	if c.Render.MaxConcurrent == 0 {
		c.Render.MaxConcurrent = defaults.Render.MaxConcurrent
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
