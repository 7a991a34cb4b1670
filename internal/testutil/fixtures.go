// Package testutil provides test helper utilities for ninja tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TempFiles creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// Analysis returns an upload-analysis payload as the backend produces it,
// including fields the client never interprets.
func Analysis() string {
	payload := map[string]interface{}{
		"name":              "Ada Lovelace",
		"email":             "ada@example.com",
		"phone":             "+44 20 7946 0000",
		"job_role":          "Backend Engineer",
		"skills":            []string{"Go", "PostgreSQL", "Kubernetes", "gRPC"},
		"experience_years":  7,
		"application_count": 0,
		"is_premium":        false,
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// History returns a history log with n entries, newest first.
func History(n int) string {
	companies := []string{"TechCorp AI", "Innovate Systems", "DataFlow Inc", "CloudScale", "OldSchool Bank"}
	entries := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, map[string]string{
			"company": companies[i%len(companies)],
			"role":    "Software Engineer",
			"status":  "applied",
			"date":    "2026-10-18 09:0" + string(rune('0'+i%10)),
		})
	}
	data, _ := json.Marshal(entries)
	return string(data)
}

// Resume returns the contents of a tiny stand-in resume file.
func Resume() string {
	return "%PDF-1.4\n% ninja test resume\n"
}
