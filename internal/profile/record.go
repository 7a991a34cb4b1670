// Package profile owns the single persisted user-profile record and the
// pending-premium flag that gates its promotion to the paid tier.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Well-known field names inside the profile record.
const (
	FieldName      = "name"
	FieldJobRole   = "job_role"
	FieldSkills    = "skills"
	FieldIsPremium = "is_premium"
)

var errNotObject = errors.New("profile: record is not a JSON object")

// Record is the persisted profile. Known fields have typed accessors; all
// other fields supplied by the server are kept as raw JSON and written back
// unchanged.
type Record struct {
	fields map[string]json.RawMessage
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]json.RawMessage)}
}

// ParseRecord decodes a JSON object into a Record.
func ParseRecord(data []byte) (*Record, error) {
	r := NewRecord()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler. Only JSON objects are accepted.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("profile: decode record: %w", err)
	}
	r.fields = fields
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || r.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.fields)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := NewRecord()
	if r == nil {
		return out
	}
	for k, v := range r.fields {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		out.fields[k] = cp
	}
	return out
}

// Get returns the raw JSON stored for key.
func (r *Record) Get(key string) (json.RawMessage, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set encodes v and stores it under key.
func (r *Record) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("profile: encode %s: %w", key, err)
	}
	r.setRaw(key, raw)
	return nil
}

func (r *Record) setRaw(key string, raw json.RawMessage) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	r.fields[key] = raw
}

// Keys returns the record's field names in sorted order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Name returns the user's name, or "" when unset or not a string.
func (r *Record) Name() string { return r.str(FieldName) }

// JobRole returns the target job role.
func (r *Record) JobRole() string { return r.str(FieldJobRole) }

// Skills returns the skills list in stored order.
func (r *Record) Skills() []string {
	raw, ok := r.Get(FieldSkills)
	if !ok {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil
	}
	return skills
}

// IsPremium reports whether the paid tier is active.
func (r *Record) IsPremium() bool {
	raw, ok := r.Get(FieldIsPremium)
	if !ok {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v
}

func (r *Record) str(key string) string {
	raw, ok := r.Get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name      *string
	JobRole   *string
	Skills    *[]string
	IsPremium *bool
	Extra     map[string]json.RawMessage
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Name == nil && p.JobRole == nil && p.Skills == nil && p.IsPremium == nil && len(p.Extra) == 0
}

// Apply overlays the fields present in p onto r.
func (r *Record) Apply(p Patch) error {
	for k, v := range p.Extra {
		r.setRaw(k, v)
	}
	if p.Name != nil {
		if err := r.Set(FieldName, *p.Name); err != nil {
			return err
		}
	}
	if p.JobRole != nil {
		if err := r.Set(FieldJobRole, *p.JobRole); err != nil {
			return err
		}
	}
	if p.Skills != nil {
		skills := *p.Skills
		if skills == nil {
			skills = []string{}
		}
		if err := r.Set(FieldSkills, skills); err != nil {
			return err
		}
	}
	if p.IsPremium != nil {
		if err := r.Set(FieldIsPremium, *p.IsPremium); err != nil {
			return err
		}
	}
	return nil
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// StringSlice returns a pointer to s.
func StringSlice(s []string) *[]string { return &s }

// ParseSkills splits a comma-separated skills string. Entries are trimmed,
// empty entries dropped, order and duplicates kept.
func ParseSkills(s string) []string {
	skills := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		skills = append(skills, part)
	}
	return skills
}

// FormatSkills joins skills for display in an editable field.
func FormatSkills(skills []string) string {
	return strings.Join(skills, ", ")
}
