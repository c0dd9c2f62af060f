package overlay

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind identifies the visual element type of an overlay.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// SpecFileName is the serialized overlay list inside a job working directory.
const SpecFileName = "overlays.json"

// Default values applied when the serialized overlay omits a field.
const (
	defaultTextX      = 50
	defaultTextY      = 50
	defaultMediaX     = 0
	defaultMediaY     = 0
	defaultScale      = -1
	defaultWindowFrom = 0.0
	defaultWindowTo   = 5.0
	defaultFontSize   = 24
	defaultFontColor  = "white"
)

// Overlay is one visual element composited onto the base video. Optional
// fields are pointers so an absent value can fall back to a kind-dependent
// default.
type Overlay struct {
	ID        int      `json:"id"`
	Kind      Kind     `json:"type"`
	Content   string   `json:"content"`
	X         *int     `json:"x,omitempty"`
	Y         *int     `json:"y,omitempty"`
	Width     *int     `json:"width,omitempty"`
	Height    *int     `json:"height,omitempty"`
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
	FontSize  *int     `json:"fontsize,omitempty"`
	FontColor string   `json:"fontcolor,omitempty"`
}

// IsMedia reports whether the overlay references a media asset rather than a caption.
func (o Overlay) IsMedia() bool {
	return o.Kind == KindImage || o.Kind == KindVideo
}

// PosX returns the horizontal pixel offset, defaulting per kind.
func (o Overlay) PosX() int {
	if o.X != nil {
		return *o.X
	}
	if o.Kind == KindText {
		return defaultTextX
	}
	return defaultMediaX
}

// PosY returns the vertical pixel offset, defaulting per kind.
func (o Overlay) PosY() int {
	if o.Y != nil {
		return *o.Y
	}
	if o.Kind == KindText {
		return defaultTextY
	}
	return defaultMediaY
}

// ScaleWidth returns the target width for media overlays; -1 keeps the source width.
func (o Overlay) ScaleWidth() int {
	if o.Width != nil {
		return *o.Width
	}
	return defaultScale
}

// ScaleHeight returns the target height for media overlays; -1 keeps the source height.
func (o Overlay) ScaleHeight() int {
	if o.Height != nil {
		return *o.Height
	}
	return defaultScale
}

// WindowStart returns the start of the visibility window in seconds.
func (o Overlay) WindowStart() float64 {
	if o.StartTime != nil {
		return *o.StartTime
	}
	return defaultWindowFrom
}

// WindowEnd returns the end of the visibility window in seconds.
func (o Overlay) WindowEnd() float64 {
	if o.EndTime != nil {
		return *o.EndTime
	}
	return defaultWindowTo
}

// TextSize returns the caption font size.
func (o Overlay) TextSize() int {
	if o.FontSize != nil {
		return *o.FontSize
	}
	return defaultFontSize
}

// TextColor returns the caption font color.
func (o Overlay) TextColor() string {
	if o.FontColor != "" {
		return o.FontColor
	}
	return defaultFontColor
}

// Decode parses a serialized overlay list.
func Decode(data []byte) ([]Overlay, error) {
	var overlays []Overlay
	if err := json.Unmarshal(data, &overlays); err != nil {
		return nil, err
	}
	return overlays, nil
}

// Load reads and parses the overlay list from path.
func Load(path string) ([]Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	overlays, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", SpecFileName, err)
	}
	return overlays, nil
}
