package profile

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/applyninja/ninja/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	slots := storage.NewMemory()
	return NewStore(slots, nil), slots
}

func seed(t *testing.T, s *Store, raw string) {
	t.Helper()
	rec, err := ParseRecord([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRecord(%s) failed: %v", raw, err)
	}
	if err := s.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func TestReadAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Read = %v, want nil", rec)
	}
}

func TestReadCorrupt(t *testing.T) {
	ctx := context.Background()
	for _, content := range []string{"{not json", "[1,2]", "null", `"text"`} {
		s, slots := newTestStore(t)
		if err := slots.Apply(ctx, storage.Put(ProfileKey, []byte(content))); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		rec, err := s.Read(ctx)
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("Read(%q) err = %v, want ErrCorrupt", content, err)
		}
		if rec != nil {
			t.Errorf("Read(%q) rec = %v, want nil", content, rec)
		}

		rec, err = s.Load(ctx)
		if err != nil || rec != nil {
			t.Errorf("Load(%q) = %v, %v; want nil, nil", content, rec, err)
		}
	}
}

func TestMergePreservesUnknownFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seed(t, s, `{"name":"Ada","job_role":"Engineer","skills":["go"],"email":"ada@example.com","phone":{"cc":"+1","n":"555"}}`)

	rec, err := s.Merge(ctx, Patch{Name: String("Ada L."), Skills: StringSlice([]string{"go", "sql"})})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if rec.Name() != "Ada L." {
		t.Errorf("Name = %q, want %q", rec.Name(), "Ada L.")
	}
	if rec.JobRole() != "Engineer" {
		t.Errorf("JobRole = %q, want %q", rec.JobRole(), "Engineer")
	}

	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	email, _ := got.Get("email")
	if string(email) != `"ada@example.com"` {
		t.Errorf("email = %s, want %q", email, `"ada@example.com"`)
	}
	phone, _ := got.Get("phone")
	if string(phone) != `{"cc":"+1","n":"555"}` {
		t.Errorf("phone = %s, want verbatim object", phone)
	}
	if !reflect.DeepEqual(got.Skills(), []string{"go", "sql"}) {
		t.Errorf("Skills = %v, want [go sql]", got.Skills())
	}
}

func TestMergeEmptyPatchIsNoop(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)
	seed(t, s, `{"name":"Ada","is_premium":false,"extra":[1,2,3]}`)
	before, _, _ := slots.Get(ctx, ProfileKey)

	if _, err := s.Merge(ctx, Patch{}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	after, _, _ := slots.Get(ctx, ProfileKey)

	var b, a map[string]any
	_ = json.Unmarshal(before, &b)
	_ = json.Unmarshal(after, &a)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("merge({}) changed record: before %s, after %s", before, after)
	}
}

func TestMergeOnAbsentCreatesRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if _, err := s.Merge(ctx, Patch{JobRole: String("Designer")}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	rec, err := s.Read(ctx)
	if err != nil || rec == nil {
		t.Fatalf("Read = %v, %v", rec, err)
	}
	if rec.JobRole() != "Designer" {
		t.Errorf("JobRole = %q, want Designer", rec.JobRole())
	}
	if rec.Len() != 1 {
		t.Errorf("Len = %d, want 1", rec.Len())
	}
}

func TestMergeOnCorruptStartsEmpty(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)
	_ = slots.Apply(ctx, storage.Put(ProfileKey, []byte("{{{")))

	rec, err := s.Merge(ctx, Patch{Name: String("Bo")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if rec.Name() != "Bo" || rec.Len() != 1 {
		t.Errorf("record = %v keys, name %q; want only name Bo", rec.Keys(), rec.Name())
	}
}

func TestSkillsSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	skills := ParseSkills("a, b, b, ")
	if _, err := s.Merge(ctx, Patch{Skills: &skills}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	rec, _ := s.Read(ctx)
	if want := []string{"a", "b", "b"}; !reflect.DeepEqual(rec.Skills(), want) {
		t.Errorf("Skills = %v, want %v", rec.Skills(), want)
	}
}

func TestParseSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{" go ,  rust ", []string{"go", "rust"}},
		{",,,", []string{}},
		{"a, b, b, ", []string{"a", "b", "b"}},
		{"C++, C#,  .NET", []string{"C++", "C#", ".NET"}},
	}
	for _, tt := range tests {
		got := ParseSkills(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSkills(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPromoteClearsFlagAndSetsPremium(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seed(t, s, `{"name":"Ada","application_count":4}`)
	if err := s.SetPendingPremium(ctx, true); err != nil {
		t.Fatalf("SetPendingPremium failed: %v", err)
	}

	if _, err := s.Promote(ctx); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	pending, _ := s.PendingPremium(ctx)
	if pending {
		t.Error("pending flag should be cleared after Promote")
	}
	rec, _ := s.Read(ctx)
	if !rec.IsPremium() {
		t.Error("is_premium should be true after Promote")
	}
	count, _ := rec.Get("application_count")
	if string(count) != "4" {
		t.Errorf("application_count = %s, want 4", count)
	}
}

func TestPendingPremiumFlag(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)

	if pending, _ := s.PendingPremium(ctx); pending {
		t.Error("pending should default to false")
	}
	_ = s.SetPendingPremium(ctx, true)
	if pending, _ := s.PendingPremium(ctx); !pending {
		t.Error("pending should be true after set")
	}
	_ = s.SetPendingPremium(ctx, false)
	if _, ok, _ := slots.Get(ctx, PendingPremiumKey); ok {
		t.Error("clearing the flag should remove the slot")
	}

	_ = slots.Apply(ctx, storage.Put(PendingPremiumKey, []byte("yes")))
	if pending, _ := s.PendingPremium(ctx); pending {
		t.Error(`only "true" counts as pending`)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s, slots := newTestStore(t)
	seed(t, s, `{"name":"Ada"}`)
	_ = s.SetPendingPremium(ctx, true)
	_ = slots.Apply(ctx, storage.Put("legacy", []byte(`1`)))

	removed, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	want := []string{ProfileKey, "legacy", PendingPremiumKey}
	sort.Strings(want)
	if strings.Join(removed, ",") != strings.Join(want, ",") {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	keys, _ := slots.Keys(ctx)
	if len(keys) != 0 {
		t.Errorf("Keys after Reset = %v, want none", keys)
	}

	removed, err = s.Reset(ctx)
	if err != nil || len(removed) != 0 {
		t.Errorf("second Reset = %v, %v; want nothing removed", removed, err)
	}
}

func TestRecordAccessorsTolerateWrongTypes(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"name":7,"skills":"go","is_premium":"yes"}`))
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if rec.Name() != "" {
		t.Errorf("Name = %q, want empty", rec.Name())
	}
	if rec.Skills() != nil {
		t.Errorf("Skills = %v, want nil", rec.Skills())
	}
	if rec.IsPremium() {
		t.Error("IsPremium should be false for non-bool")
	}
}
