// Package capture runs a command under a pseudo-terminal and tees its output
// into a scrollback sink while echoing it live. Programs behave as if attached
// to a real terminal, so colors and progress redraws are recorded faithfully.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/creack/pty"
)

// Options configures a capture run.
type Options struct {
	Workdir string
	Width   int       // pty columns; 0 means 80
	Rows    int       // pty rows; 0 means 24
	Echo    io.Writer // live output target; nil discards
	Sink    io.Writer // scrollback sink, required
}

// Run executes a shell command under a pty and returns its exit code. Output
// reaches both the sink and the echo writer; a sink write error aborts the
// capture but the command still runs to completion.
func Run(ctx context.Context, command string, opts Options) (int, error) {
	if strings.TrimSpace(command) == "" {
		return -1, fmt.Errorf("capture: empty command")
	}
	if opts.Sink == nil {
		return -1, fmt.Errorf("capture: nil sink")
	}
	cols := opts.Width
	if cols <= 0 {
		cols = 80
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = 24
	}

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	if opts.Workdir != "" {
		cmd.Dir = opts.Workdir
	}
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return -1, fmt.Errorf("capture: start pty: %w", err)
	}
	defer ptmx.Close()

	out := opts.Sink
	if opts.Echo != nil {
		out = io.MultiWriter(opts.Echo, opts.Sink)
	}
	copyDone := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(out, ptmx)
		copyDone <- copyErr
	}()

	waitErr := cmd.Wait()
	ptmx.Close()
	copyErr := <-copyDone
	// Reading the master after the child exits fails with EIO on Linux.
	if copyErr != nil && !errors.Is(copyErr, io.EOF) && !isPtyEOF(copyErr) {
		return exitCode(waitErr), fmt.Errorf("capture: copy output: %w", copyErr)
	}
	if waitErr != nil {
		return exitCode(waitErr), fmt.Errorf("capture: command failed: %w", waitErr)
	}
	return 0, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func isPtyEOF(err error) bool {
	return strings.Contains(err.Error(), "input/output error")
}
