package ffmpeg

import (
	"slices"
	"strings"
	"testing"
)

func TestArgsWithFilterGraph(t *testing.T) {
	cmd := Command{
		Binary:        "ffmpeg",
		Input:         "/jobs/a/base.mp4",
		ExtraInputs:   []string{"/jobs/a/logo.png"},
		FilterComplex: "[0:v]drawtext=text='hi'[txt1]",
		OutputLabel:   "[txt1]",
		VideoCodec:    "libx264",
		Preset:        "fast",
		Output:        "/jobs/a/rendered.mp4",
	}

	want := []string{
		"-y", "-i", "/jobs/a/base.mp4",
		"-i", "/jobs/a/logo.png",
		"-filter_complex", "[0:v]drawtext=text='hi'[txt1]",
		"-map", "[txt1]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "copy",
		"/jobs/a/rendered.mp4",
	}
	if got := cmd.Args(); !slices.Equal(got, want) {
		t.Fatalf("args = %v\nwant %v", got, want)
	}
}

func TestArgsStreamCopy(t *testing.T) {
	cmd := Command{
		Binary: "ffmpeg",
		Input:  "/jobs/a/base.mp4",
		Output: "/jobs/a/rendered.mp4",
	}
	if !cmd.StreamCopy() {
		t.Fatal("command without filter graph should stream copy")
	}

	want := []string{"-y", "-i", "/jobs/a/base.mp4", "-c", "copy", "/jobs/a/rendered.mp4"}
	if got := cmd.Args(); !slices.Equal(got, want) {
		t.Fatalf("args = %v\nwant %v", got, want)
	}
}

func TestStringQuotesHostileArguments(t *testing.T) {
	cmd := Command{
		Binary:        "ffmpeg",
		Input:         "/jobs/a/my video.mp4",
		FilterComplex: "[0:v]drawtext=text='hi there'[txt1]",
		OutputLabel:   "[txt1]",
		VideoCodec:    "libx264",
		Preset:        "fast",
		Output:        "/jobs/a/rendered.mp4",
	}

	rendered := cmd.String()
	if !strings.Contains(rendered, "'/jobs/a/my video.mp4'") {
		t.Fatalf("input path not quoted: %s", rendered)
	}
	if !strings.HasPrefix(rendered, "ffmpeg -y -i ") {
		t.Fatalf("unexpected prefix: %s", rendered)
	}
}
