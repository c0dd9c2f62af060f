package ffmpeg

import "strings"

// Command describes one transcoder invocation as a structured argument list.
// Arguments are always passed to the process directly, never through a
// shell, so user-controlled captions and filenames cannot alter the command.
type Command struct {
	Binary        string
	Input         string
	ExtraInputs   []string
	FilterComplex string
	OutputLabel   string
	VideoCodec    string
	Preset        string
	Output        string
}

// StreamCopy reports whether the invocation repackages the source without filters.
func (c Command) StreamCopy() bool {
	return c.FilterComplex == ""
}

// Args assembles the full ffmpeg argument list.
func (c Command) Args() []string {
	args := []string{"-y", "-i", c.Input}
	for _, input := range c.ExtraInputs {
		args = append(args, "-i", input)
	}
	if c.StreamCopy() {
		return append(args, "-c", "copy", c.Output)
	}
	args = append(args,
		"-filter_complex", c.FilterComplex,
		"-map", c.OutputLabel,
		// The audio map is optional: a silent base video must not fail the job.
		"-map", "0:a?",
		"-c:v", c.VideoCodec,
		"-preset", c.Preset,
		"-c:a", "copy",
	)
	return append(args, c.Output)
}

// String renders the command for diagnostic logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.ExtraInputs)*2+12)
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.Args() {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t'\"\\$&|;<>()*?[]#~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
