// Package ffprobe wraps the external ffprobe binary used to query media
// durations before a render starts.
package ffprobe
