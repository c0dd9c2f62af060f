package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
)

var commandContext = exec.CommandContext

// Runner launches transcoder processes and streams their diagnostic output.
type Runner struct{}

// NewRunner constructs a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the command, writing the full command line followed by every
// diagnostic line to logWriter and handing each line to onLine. It blocks
// until the process exits and returns the process error, if any. Lines are
// delivered as they arrive so progress stays visible mid-render.
func (r *Runner) Run(ctx context.Context, command Command, logWriter io.Writer, onLine func(string)) error {
	if logWriter != nil {
		fmt.Fprintf(logWriter, "Running transcoder command:\n%s\n\n", command.String())
	}

	cmd := commandContext(ctx, command.Binary, command.Args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	// ffmpeg writes its diagnostics to stderr; merge both channels so the
	// log captures everything in arrival order.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start transcoder: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if logWriter != nil {
			fmt.Fprintln(logWriter, line)
		}
		if onLine != nil {
			onLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read transcoder output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return err
	}
	return nil
}
