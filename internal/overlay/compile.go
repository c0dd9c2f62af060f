package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BaseVideoLabel is the filter label of the base video's primary stream.
const BaseVideoLabel = "[0:v]"

// Graph is the compiled filter graph for one job.
type Graph struct {
	// Inputs lists extra media input paths in the order their 1-based
	// input indexes are referenced inside FilterComplex.
	Inputs []string
	// FilterComplex is the ;-joined stage list, empty when no overlay
	// produced a usable stage.
	FilterComplex string
	// Output is the final video label to map to the output stream.
	Output string
}

// StreamCopy reports whether the job can skip re-encoding entirely.
func (g Graph) StreamCopy() bool {
	return g.FilterComplex == ""
}

// captionEscaper makes caption text inert inside a drawtext expression.
// Single quotes would otherwise terminate the text argument and colons
// would start the next filter option, letting user input rewrite the graph.
var captionEscaper = strings.NewReplacer("'", `'\''`, ":", `\:`)

// EscapeCaption escapes characters meaningful to the filter expression grammar.
func EscapeCaption(text string) string {
	return captionEscaper.Replace(text)
}

// Compile turns the ordered overlay list into a filter graph. Caption
// overlays are chained first, strictly sequentially; media overlays whose
// backing file exists in workdir are stacked on top in list order. Overlays
// referencing missing files, and overlays of unknown kind, contribute
// nothing and consume no input slot.
func Compile(overlays []Overlay, workdir string) Graph {
	var (
		stages  []string
		inputs  []string
		current = BaseVideoLabel
	)

	for _, ov := range overlays {
		if ov.Kind != KindText {
			continue
		}
		label := fmt.Sprintf("[txt%d]", ov.ID)
		stages = append(stages, fmt.Sprintf(
			"%sdrawtext=text='%s':x=%d:y=%d:fontsize=%d:fontcolor=%s:box=1:boxcolor=black@0.5:boxborderw=10:enable='between(t,%s,%s)'%s",
			current,
			EscapeCaption(ov.Content),
			ov.PosX(), ov.PosY(),
			ov.TextSize(), ov.TextColor(),
			formatSeconds(ov.WindowStart()), formatSeconds(ov.WindowEnd()),
			label,
		))
		current = label
	}

	for _, ov := range overlays {
		if !ov.IsMedia() {
			continue
		}
		path := filepath.Join(workdir, filepath.Base(ov.Content))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		inputs = append(inputs, path)
		idx := len(inputs) // 1-based after the base video at index 0

		scaled := fmt.Sprintf("[ov%d]", idx)
		if ov.Kind == KindVideo {
			// A video overlay restarts its own timeline when its window
			// opens instead of keeping the source file's absolute offset.
			stages = append(stages, fmt.Sprintf("[%d:v]setpts=PTS-STARTPTS,scale=%d:%d%s",
				idx, ov.ScaleWidth(), ov.ScaleHeight(), scaled))
		} else {
			stages = append(stages, fmt.Sprintf("[%d:v]scale=%d:%d%s",
				idx, ov.ScaleWidth(), ov.ScaleHeight(), scaled))
		}

		label := fmt.Sprintf("[tmp%d]", idx)
		stages = append(stages, fmt.Sprintf("%s%soverlay=%d:%d:enable='between(t,%s,%s)'%s",
			current, scaled,
			ov.PosX(), ov.PosY(),
			formatSeconds(ov.WindowStart()), formatSeconds(ov.WindowEnd()),
			label,
		))
		current = label
	}

	if len(stages) == 0 {
		return Graph{Output: BaseVideoLabel}
	}
	return Graph{
		Inputs:        inputs,
		FilterComplex: strings.Join(stages, ";"),
		Output:        current,
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
