package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]Slots {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Slots{
		"memory": NewMemory(),
		"sqlite": db,
	}
}

func TestSlotsPutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
			}

			if err := s.Apply(ctx, Put("a", []byte(`{"x":1}`)), Put("b", []byte("true"))); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			got, ok, err := s.Get(ctx, "a")
			if err != nil || !ok {
				t.Fatalf("Get(a) = ok %v, err %v", ok, err)
			}
			if string(got) != `{"x":1}` {
				t.Errorf("Get(a) = %q, want %q", got, `{"x":1}`)
			}

			if err := s.Apply(ctx, Put("a", []byte("2")), Delete("b")); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			got, _, _ = s.Get(ctx, "a")
			if string(got) != "2" {
				t.Errorf("Get(a) after overwrite = %q, want %q", got, "2")
			}
			if _, ok, _ := s.Get(ctx, "b"); ok {
				t.Error("b should be deleted")
			}

			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(keys) != 1 || keys[0] != "a" {
				t.Errorf("Keys = %v, want [a]", keys)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := db.Apply(ctx, Put("applyNinjaUser", []byte(`{"name":"Ada"}`))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	_ = db.Close()

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	got, ok, err := db.Get(ctx, "applyNinjaUser")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != `{"name":"Ada"}` {
		t.Errorf("Get = %q, want %q", got, `{"name":"Ada"}`)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	_ = m.Close()
	if _, _, err := m.Get(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close err = %v, want ErrClosed", err)
	}
}
