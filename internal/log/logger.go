// Package log provides structured event logging.
// This file appends workflow events to events.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventUploadStarted    = "upload_started"
	EventUploadCompleted  = "upload_completed"
	EventUploadFailed     = "upload_failed"
	EventProofSubmitted   = "proof_submitted"
	EventPremiumPromoted  = "premium_promoted"
	EventPromotionFailed  = "promotion_failed"
	EventAgentDeployed    = "agent_deployed"
	EventAgentFinished    = "agent_finished"
	EventAgentFailed      = "agent_failed"
	EventPaymentRequired  = "payment_required"
	EventAgentStopped     = "agent_stopped"
	EventHistoryCleared   = "history_cleared"
	EventSettingsSaved    = "settings_saved"
	EventNavigated        = "navigated"
	EventStorageReset     = "storage_reset"
	EventContactSubmitted = "contact_submitted"
)

// LogEvent represents a single structured event written to the log.
type LogEvent struct {
	Time       time.Time              `json:"time"`
	Event      string                 `json:"event"`
	RunID      string                 `json:"run,omitempty"`
	Page       string                 `json:"page,omitempty"`
	File       string                 `json:"file,omitempty"`
	State      string                 `json:"state,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Premium    bool                   `json:"premium,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to events.jsonl inside home.
// Creates home if it does not already exist.
// Does not truncate an existing log file.
func NewLogger(home string) (*Logger, error) {
	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("create home directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(home, "events.jsonl"),
	}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Append writes a single LogEvent as one JSON line to the log file.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// A nil Logger drops the event.
func (l *Logger) Append(event LogEvent) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}

// Tail returns the last n events.
func (l *Logger) Tail(n int) ([]LogEvent, error) {
	events, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}
