package models

import (
	"regexp"
	"strings"
)

// SourceName identifies a metadata source.
type SourceName string

const (
	SourceSpotify     SourceName = "spotify"
	SourceDiscogs     SourceName = "discogs"
	SourceMusicBrainz SourceName = "musicbrainz"

	// SourceNone marks a record whose year no source could supply.
	SourceNone SourceName = "unresolved"
)

// TrackID identifies one track on its platform. Immutable once parsed
// out of the playlist listing.
type TrackID struct {
	ID       string
	Platform string
}

// URL returns the canonical deep link for the track, or "" when the ID
// is missing.
func (t TrackID) URL() string {
	if t.ID == "" {
		return ""
	}
	return "https://open.spotify.com/track/" + t.ID
}

// Candidate is one source's proposed metadata for a track. A zero Year
// means the source reported none.
type Candidate struct {
	Source SourceName
	Title  string
	Artist string
	Year   int
}

// Resolved is the reconciled metadata used to render one card. Year is 0
// and YearSource is SourceNone when no source supplied a plausible year.
type Resolved struct {
	Track      TrackID
	Title      string
	Artist     string
	Year       int
	YearSource SourceName
}

// Status records the outcome of one track in the pipeline, in input order.
type Status struct {
	Track      TrackID
	Index      int
	Title      string
	Year       int
	YearSource SourceName
	OK         bool
	Reason     string
}

var (
	invalidChars = regexp.MustCompile(`[/\?%*:|"<>\x00-\x1F]`)
	manyUnders   = regexp.MustCompile(`_+`)
)

// SanitizeName makes a string safe for use in file names.
func SanitizeName(name string) string {
	sanitized := strings.TrimSpace(invalidChars.ReplaceAllString(name, "_"))
	// remove multiple consecutive underscores
	return manyUnders.ReplaceAllString(sanitized, "_")
}
