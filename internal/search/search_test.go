package search

import (
	"errors"
	"testing"

	"github.com/applyninja/ninja/internal/profile"
)

func TestJobSearchURL(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "role and skills",
			json: `{"job_role":"Backend Engineer","skills":["Go","PostgreSQL","Kubernetes","gRPC"]}`,
			want: "https://www.google.com/search?q=Backend%20Engineer%20Go%20PostgreSQL%20Kubernetes%20jobs&ibp=htl;jobs",
		},
		{
			name: "no role",
			json: `{"skills":["C++"]}`,
			want: "https://www.google.com/search?q=C%2B%2B%20jobs&ibp=htl;jobs",
		},
		{
			name: "empty profile",
			json: `{}`,
			want: "https://www.google.com/search?q=jobs&ibp=htl;jobs",
		},
		{
			name: "unreserved punctuation",
			json: `{"job_role":"Dev (Remote)!"}`,
			want: "https://www.google.com/search?q=Dev%20(Remote)!%20jobs&ibp=htl;jobs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := profile.ParseRecord([]byte(tt.json))
			if err != nil {
				t.Fatalf("ParseRecord: %v", err)
			}
			got, err := JobSearchURL(rec)
			if err != nil {
				t.Fatalf("JobSearchURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestJobSearchURLWithoutProfile(t *testing.T) {
	if _, err := JobSearchURL(nil); !errors.Is(err, ErrNoProfile) {
		t.Errorf("err = %v, want ErrNoProfile", err)
	}
}
