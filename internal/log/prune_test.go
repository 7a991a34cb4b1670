package log

import (
	"testing"
	"time"
)

func TestPruneByAge(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	old := time.Now().AddDate(0, 0, -40).UTC()
	_ = l.Append(LogEvent{Time: old, Event: EventUploadStarted})
	_ = l.Append(LogEvent{Time: old, Event: EventUploadCompleted})
	_ = l.Append(LogEvent{Event: EventAgentDeployed})

	n, err := l.PruneByAge(30, true)
	if err != nil || n != 2 {
		t.Fatalf("dry run = %d, %v; want 2", n, err)
	}
	if all, _ := l.ReadAll(); len(all) != 3 {
		t.Errorf("dry run removed events: %d left", len(all))
	}

	n, err = l.PruneByAge(30, false)
	if err != nil || n != 2 {
		t.Fatalf("prune = %d, %v; want 2", n, err)
	}
	all, _ := l.ReadAll()
	if len(all) != 1 || all[0].Event != EventAgentDeployed {
		t.Errorf("remaining = %+v", all)
	}
}

func TestPruneKeepRecent(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	for _, ev := range []string{EventUploadStarted, EventUploadCompleted, EventNavigated} {
		_ = l.Append(LogEvent{Event: ev})
	}

	n, err := l.PruneKeepRecent(1, false)
	if err != nil || n != 2 {
		t.Fatalf("prune = %d, %v; want 2", n, err)
	}
	all, _ := l.ReadAll()
	if len(all) != 1 || all[0].Event != EventNavigated {
		t.Errorf("remaining = %+v", all)
	}

	if n, err := l.PruneKeepRecent(5, false); err != nil || n != 0 {
		t.Errorf("no-op prune = %d, %v", n, err)
	}
}
