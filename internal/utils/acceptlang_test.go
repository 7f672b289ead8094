package utils

import "testing"

func TestDetermineLocale(t *testing.T) {
	supported := []string{"en", "pat"}

	cases := []struct {
		name   string
		query  string
		accept string
		want   string
	}{
		{"query wins", "pat", "en", "pat"},
		{"query base tag", "PAT-JM", "", "pat"},
		{"accept language", "", "pat", "pat"},
		{"accept with q values", "", "fr;q=0.9,pat;q=0.8,en;q=0.7", "pat"},
		{"higher q wins", "", "pat;q=0.5,en;q=0.9", "en"},
		{"region tag falls back to base", "", "en-US,fr;q=0.5", "en"},
		{"unsupported falls back to default", "", "fr,de;q=0.9", "en"},
		{"empty input", "", "", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineLocale(tc.query, tc.accept, supported, "en"); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
