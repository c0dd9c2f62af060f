package ffmpeg

import "testing"

func TestParseProgress(t *testing.T) {
	cases := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{"typical status line", "frame=  10 fps=0.0 q=-1.0 size=256KiB time=00:01:05.50 bitrate=  32.1kbits/s", 65.5, true},
		{"hours contribute", "time=02:10:00.00 speed=1x", 7800, true},
		{"no fraction", "time=00:00:09 bitrate=N/A", 9, true},
		{"no marker", "frame=  10 fps=0.0 q=-1.0", 0, false},
		{"empty line", "", 0, false},
		{"marker without timestamp", "time=soon", 0, false},
		{"negative-looking token ignored", "time=-00:01:00.00", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseProgress(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("seconds = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPercentClampsAndFloors(t *testing.T) {
	// With a 100s duration, elapsed past the end still caps at 100.
	for _, tc := range []struct {
		elapsed float64
		want    int
	}{
		{10, 10},
		{50, 50},
		{120, 100},
		{0.4, 0},
		{99.9, 99},
	} {
		if got := Percent(tc.elapsed, 100); got != tc.want {
			t.Errorf("Percent(%v, 100) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestPercentUnknownDuration(t *testing.T) {
	if got := Percent(50, 0); got != 0 {
		t.Fatalf("Percent with zero duration = %d, want 0", got)
	}
	if got := Percent(50, -1); got != 0 {
		t.Fatalf("Percent with negative duration = %d, want 0", got)
	}
}
