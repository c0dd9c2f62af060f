package overlay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func writeAsset(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("asset"), 0o644); err != nil {
		t.Fatalf("write asset %s: %v", name, err)
	}
}

func TestCompileSingleTextOverlay(t *testing.T) {
	graph := Compile([]Overlay{{ID: 1, Kind: KindText, Content: "hi"}}, t.TempDir())

	if graph.StreamCopy() {
		t.Fatal("text overlay should produce a filter graph")
	}
	if len(graph.Inputs) != 0 {
		t.Fatalf("text overlay must not consume input slots, got %v", graph.Inputs)
	}
	if strings.Count(graph.FilterComplex, ";") != 0 {
		t.Fatalf("expected exactly one stage, got %q", graph.FilterComplex)
	}
	if !strings.HasPrefix(graph.FilterComplex, "[0:v]drawtext=text='hi':") {
		t.Fatalf("unexpected stage %q", graph.FilterComplex)
	}
	if graph.Output != "[txt1]" {
		t.Fatalf("output label = %q, want [txt1]", graph.Output)
	}
}

func TestCompileEmptyListSignalsStreamCopy(t *testing.T) {
	graph := Compile(nil, t.TempDir())
	if !graph.StreamCopy() {
		t.Fatal("empty overlay list should signal stream copy")
	}
	if graph.Output != BaseVideoLabel {
		t.Fatalf("output label = %q", graph.Output)
	}
}

func TestCompileUnknownKindIgnored(t *testing.T) {
	graph := Compile([]Overlay{{ID: 1, Kind: "sticker", Content: "x"}}, t.TempDir())
	if !graph.StreamCopy() {
		t.Fatalf("unknown kind should be ignored, got %q", graph.FilterComplex)
	}
}

func TestCompileMissingMediaSkippedSilently(t *testing.T) {
	graph := Compile([]Overlay{{ID: 1, Kind: KindImage, Content: "gone.png"}}, t.TempDir())
	if !graph.StreamCopy() {
		t.Fatalf("missing asset should yield stream copy, got %q", graph.FilterComplex)
	}
	if len(graph.Inputs) != 0 {
		t.Fatalf("missing asset must not consume an input slot: %v", graph.Inputs)
	}
}

func TestCompileChainsTextThenMedia(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "logo.png")

	graph := Compile([]Overlay{
		{ID: 1, Kind: KindText, Content: "first"},
		{ID: 2, Kind: KindText, Content: "second"},
		{ID: 3, Kind: KindImage, Content: "logo.png"},
	}, dir)

	stages := strings.Split(graph.FilterComplex, ";")
	if len(stages) != 4 {
		t.Fatalf("expected 4 stages (2 drawtext + scale + overlay), got %d: %q", len(stages), graph.FilterComplex)
	}
	if !strings.HasPrefix(stages[0], "[0:v]drawtext=") || !strings.HasSuffix(stages[0], "[txt1]") {
		t.Fatalf("stage 0 = %q", stages[0])
	}
	if !strings.HasPrefix(stages[1], "[txt1]drawtext=") || !strings.HasSuffix(stages[1], "[txt2]") {
		t.Fatalf("stage 1 should chain on [txt1]: %q", stages[1])
	}
	if stages[2] != "[1:v]scale=-1:-1[ov1]" {
		t.Fatalf("stage 2 = %q", stages[2])
	}
	if !strings.HasPrefix(stages[3], "[txt2][ov1]overlay=0:0:") || !strings.HasSuffix(stages[3], "[tmp1]") {
		t.Fatalf("stage 3 should composite on top of captions: %q", stages[3])
	}
	if graph.Output != "[tmp1]" {
		t.Fatalf("output = %q", graph.Output)
	}
	if len(graph.Inputs) != 1 || filepath.Base(graph.Inputs[0]) != "logo.png" {
		t.Fatalf("inputs = %v", graph.Inputs)
	}
}

func TestCompileVideoOverlayResetsTimestamps(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "clip.mp4")

	graph := Compile([]Overlay{
		{ID: 1, Kind: KindVideo, Content: "clip.mp4", Width: intPtr(320), Height: intPtr(180)},
	}, dir)

	if !strings.Contains(graph.FilterComplex, "[1:v]setpts=PTS-STARTPTS,scale=320:180[ov1]") {
		t.Fatalf("video overlay missing setpts stage: %q", graph.FilterComplex)
	}
}

func TestCompileAssignsSequentialInputIndexes(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "a.png")
	writeAsset(t, dir, "b.png")

	graph := Compile([]Overlay{
		{ID: 1, Kind: KindImage, Content: "a.png"},
		{ID: 2, Kind: KindImage, Content: "missing.png"},
		{ID: 3, Kind: KindImage, Content: "b.png"},
	}, dir)

	if len(graph.Inputs) != 2 {
		t.Fatalf("inputs = %v", graph.Inputs)
	}
	// The missing asset must not advance the index: b.png takes index 2.
	if !strings.Contains(graph.FilterComplex, "[2:v]scale=") {
		t.Fatalf("second present asset should use input index 2: %q", graph.FilterComplex)
	}
	if strings.Contains(graph.FilterComplex, "[3:v]") {
		t.Fatalf("no stage should reference index 3: %q", graph.FilterComplex)
	}
}

func TestEscapeCaption(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", `it'\''s`},
		{"a:b", `a\:b`},
		{"d'oh: no", `d'\''oh\: no`},
	}
	for _, tc := range cases {
		if got := EscapeCaption(tc.in); got != tc.want {
			t.Errorf("EscapeCaption(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCompileEscapesCaptionInsideStage(t *testing.T) {
	graph := Compile([]Overlay{{ID: 1, Kind: KindText, Content: "it's 5:00"}}, t.TempDir())

	if !strings.Contains(graph.FilterComplex, `text='it'\''s 5\:00':x=`) {
		t.Fatalf("caption not escaped in place: %q", graph.FilterComplex)
	}
	// The stage boundary must survive hostile captions: exactly one
	// unescaped colon-delimited drawtext option list, no early quote close.
	if strings.Contains(graph.FilterComplex, "text='it's") {
		t.Fatalf("raw quote leaked into expression: %q", graph.FilterComplex)
	}
}

func TestCompileUnsatisfiableWindowStillEmitted(t *testing.T) {
	graph := Compile([]Overlay{
		{ID: 1, Kind: KindText, Content: "never", StartTime: floatPtr(10), EndTime: floatPtr(5)},
	}, t.TempDir())

	if graph.StreamCopy() {
		t.Fatal("overlay with inverted window still compiles to a stage")
	}
	if !strings.Contains(graph.FilterComplex, "enable='between(t,10,5)'") {
		t.Fatalf("between clause should carry the inverted bounds verbatim: %q", graph.FilterComplex)
	}
}
