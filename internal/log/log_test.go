package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	defer SetLevel(LevelInfo)

	Debug("hidden message")
	Info("visible message", "key", "value")
	Error("broken", errors.New("boom"), "id", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("debug line written at INFO level: %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "key=value") {
		t.Fatalf("info line missing: %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("error value missing: %q", out)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Fatalf("debug line missing at DEBUG level: %q", buf.String())
	}
}

func TestSetOutputWhileLogging(t *testing.T) {
	defer SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				SetOutput(io.Discard)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				Info("tick", "n", j)
				_ = Logger()
			}
		}()
	}
	wg.Wait()

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("after swap")
	if !strings.Contains(buf.String(), "after swap") {
		t.Fatalf("output not redirected: %q", buf.String())
	}
}
