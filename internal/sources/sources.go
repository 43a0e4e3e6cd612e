// Package sources provides uniform lookups over the metadata services
// that may know a track's original release year.
package sources

import (
	"context"
	"errors"

	"deckify/internal/models"
)

// ErrNotFound reports that a source has no metadata for the track. The
// caller treats it the same as a transport failure: the source is simply
// absent for that track.
var ErrNotFound = errors.New("no metadata found")

// Query carries the track identity plus the title and primary artist
// seeds from the playlist listing. Discogs and MusicBrainz cannot look up
// a Spotify ID, so the seeds are what they search by.
type Query struct {
	Track  models.TrackID
	Title  string
	Artist string
}

// Source looks up one track on one metadata service. Implementations
// retry transient transport errors internally; any returned error means
// the source is absent for this track.
type Source interface {
	Name() models.SourceName
	Lookup(ctx context.Context, q Query) (models.Candidate, error)
}
