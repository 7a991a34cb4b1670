package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PruneByAge drops events older than maxAgeDays. If dryRun is true the
// journal is left untouched and only the count is returned.
func (l *Logger) PruneByAge(maxAgeDays int, dryRun bool) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	return l.prune(dryRun, func(events []LogEvent) []LogEvent {
		kept := events[:0]
		for _, e := range events {
			if !e.Time.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// PruneKeepRecent drops all but the most recent keep events.
func (l *Logger) PruneKeepRecent(keep int, dryRun bool) (int, error) {
	if keep < 0 {
		keep = 0
	}
	return l.prune(dryRun, func(events []LogEvent) []LogEvent {
		if len(events) <= keep {
			return events
		}
		return events[len(events)-keep:]
	})
}

// prune rewrites the journal with the events filter keeps, replacing the
// file in one rename. Returns the number of events dropped.
func (l *Logger) prune(dryRun bool, filter func([]LogEvent) []LogEvent) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.ReadAll()
	if err != nil {
		return 0, err
	}
	total := len(events)
	kept := filter(events)
	dropped := total - len(kept)
	if dryRun || dropped == 0 {
		return dropped, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), "events-*.jsonl")
	if err != nil {
		return 0, fmt.Errorf("create temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	for _, e := range kept {
		if err := enc.Encode(e); err != nil {
			_ = tmp.Close()
			return 0, fmt.Errorf("write log event: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return 0, fmt.Errorf("replace log file: %w", err)
	}
	return dropped, nil
}
