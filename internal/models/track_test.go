package models_test

import (
	"testing"

	"deckify/internal/models"
)

func TestTrackURL(t *testing.T) {
	track := models.TrackID{ID: "4uLU6hMCjMI75M1A2tKUQC", Platform: "spotify"}
	want := "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"
	if got := track.URL(); got != want {
		t.Fatalf("unexpected url: %q", got)
	}
}

func TestTrackURLEmptyID(t *testing.T) {
	if got := (models.TrackID{Platform: "spotify"}).URL(); got != "" {
		t.Fatalf("expected empty url for missing id, got %q", got)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"road trip 2024", "road trip 2024"},
		{`what/is:this?`, "what_is_this_"},
		{"a///b", "a_b"},
		{"  spaced  ", "spaced"},
	}
	for _, tc := range cases {
		if got := models.SanitizeName(tc.in); got != tc.want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
