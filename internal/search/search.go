// Package search builds a job-board query from the stored profile.
package search

import (
	"errors"
	"net/url"
	"strings"

	"github.com/applyninja/ninja/internal/profile"
)

// ErrNoProfile is returned when no resume has been analyzed yet.
var ErrNoProfile = errors.New("search: no profile")

// NoProfileMessage is shown to the user for ErrNoProfile.
const NoProfileMessage = "Please upload a resume first."

// TopSkills is how many skills go into the query.
const TopSkills = 3

const searchBase = "https://www.google.com/search?q="

// Query returns "<role> <skill1> <skill2> <skill3> jobs", skipping parts the
// profile lacks.
func Query(rec *profile.Record) string {
	var parts []string
	if role := rec.JobRole(); role != "" {
		parts = append(parts, role)
	}
	skills := rec.Skills()
	if len(skills) > TopSkills {
		skills = skills[:TopSkills]
	}
	parts = append(parts, skills...)
	parts = append(parts, "jobs")
	return strings.Join(parts, " ")
}

// JobSearchURL returns the job search link for rec.
func JobSearchURL(rec *profile.Record) (string, error) {
	if rec == nil {
		return "", ErrNoProfile
	}
	return searchBase + escapeComponent(Query(rec)) + "&ibp=htl;jobs", nil
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent percent-encodes s the way browsers encode a URI
// component: spaces become %20 and !'()* are left alone.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
