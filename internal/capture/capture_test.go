package capture

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunCapturesOutput(t *testing.T) {
	t.Parallel()
	var sink bytes.Buffer
	code, err := Run(context.Background(), "printf 'hello capture'", Options{Sink: &sink})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(sink.String(), "hello capture") {
		t.Fatalf("sink = %q", sink.String())
	}
}

func TestRunReportsExitCode(t *testing.T) {
	t.Parallel()
	var sink bytes.Buffer
	code, err := Run(context.Background(), "exit 3", Options{Sink: &sink})
	if err == nil {
		t.Fatal("Run succeeded, want failure")
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
}

func TestRunTeesToEcho(t *testing.T) {
	t.Parallel()
	var sink, echo bytes.Buffer
	if _, err := Run(context.Background(), "printf tee-me", Options{Sink: &sink, Echo: &echo}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(echo.String(), "tee-me") || !strings.Contains(sink.String(), "tee-me") {
		t.Fatalf("echo = %q, sink = %q", echo.String(), sink.String())
	}
}

func TestRunRejectsEmptyCommand(t *testing.T) {
	t.Parallel()
	if _, err := Run(context.Background(), "   ", Options{Sink: &bytes.Buffer{}}); err == nil {
		t.Fatal("empty command accepted")
	}
}
