package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendAndReadAll(t *testing.T) {
	l, err := NewLogger(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("ReadAll on missing file = %d events, want 0", len(events))
	}

	if err := l.Append(LogEvent{Event: EventUploadStarted, File: "cv.pdf"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(LogEvent{Event: EventPremiumPromoted, Premium: true}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err = l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Event != EventUploadStarted || events[0].File != "cv.pdf" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Error("Time should be filled in by Append")
	}
	if !events[1].Premium {
		t.Error("events[1].Premium = false, want true")
	}

	tail, _ := l.Tail(1)
	if len(tail) != 1 || tail[0].Event != EventPremiumPromoted {
		t.Errorf("Tail(1) = %+v", tail)
	}
}

func TestReadAllRejectsGarbage(t *testing.T) {
	home := t.TempDir()
	l, _ := NewLogger(home)
	if err := os.WriteFile(filepath.Join(home, "events.jsonl"), []byte("{\"event\":\"x\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := l.ReadAll()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadAll err = %v, want parse error on line 2", err)
	}
}

func TestNilLoggerDropsEvents(t *testing.T) {
	var l *Logger
	if err := l.Append(LogEvent{Event: EventNavigated}); err != nil {
		t.Errorf("nil Append err = %v, want nil", err)
	}
}

func TestDiagnosticsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDiagnostics(&buf, false)
	logger.Debug().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug line written without debug enabled")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn line missing")
	}

	buf.Reset()
	logger = NewDiagnostics(&buf, true)
	logger.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug line missing with debug enabled")
	}
}
