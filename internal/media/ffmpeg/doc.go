// Package ffmpeg builds structured transcoder command lines, launches the
// external ffmpeg process, and parses progress out of its diagnostic stream.
package ffmpeg
