package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"video.mp4", "video.mp4"},
		{"/etc/passwd", "passwd"},
		{"../../escape.mp4", "escape.mp4"},
		{`C:\Users\x\clip.mov`, "clip.mov"},
		{"  spaced.mkv ", "spaced.mkv"},
		{"", "file"},
		{"..", "file"},
		{".", "file"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestWriteStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteStream(path, strings.NewReader(`[]`)); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	if !Exists(path) {
		t.Fatal("file should exist after WriteStream")
	}
}
