// Package resolve merges per-source metadata candidates into the single
// record a card is rendered from.
package resolve

import (
	"errors"
	"time"

	"deckify/internal/models"
)

// ErrNoPrimary reports that no Spotify candidate was supplied. Spotify is
// the catalog of record for title and artist, so without it the track
// cannot be resolved at all.
var ErrNoPrimary = errors.New("no spotify candidate")

const minPlausibleYear = 1900

// Policy is the year precedence order plus the plausibility window.
// Bounds are fixed at construction so repeated resolutions of the same
// candidates produce identical output.
type Policy struct {
	Order   []models.SourceName
	MinYear int
	MaxYear int
}

// NewPolicy builds a policy with the given precedence order. An empty
// order falls back to discogs, musicbrainz, spotify: catalog databases
// record original releases more reliably than streaming re-release dates.
func NewPolicy(order []models.SourceName) Policy {
	if len(order) == 0 {
		order = []models.SourceName{
			models.SourceDiscogs,
			models.SourceMusicBrainz,
			models.SourceSpotify,
		}
	}
	return Policy{
		Order:   order,
		MinYear: minPlausibleYear,
		MaxYear: time.Now().Year() + 1,
	}
}

// Plausible reports whether a year is worth printing on a card. Values
// outside the window are parsing artifacts or bad catalog data.
func (p Policy) Plausible(year int) bool {
	return year >= p.MinYear && year <= p.MaxYear
}

// Resolve reconciles the candidates for one track. Title and artist come
// from the Spotify candidate unconditionally; the year is the first
// plausible one in policy order. An implausible year from one source
// never blocks the others. When every source comes up empty the year is
// left unresolved rather than failing the track.
func Resolve(track models.TrackID, candidates []models.Candidate, p Policy) (models.Resolved, error) {
	bySource := make(map[models.SourceName]models.Candidate, len(candidates))
	for _, c := range candidates {
		if _, ok := bySource[c.Source]; !ok {
			bySource[c.Source] = c
		}
	}

	primary, ok := bySource[models.SourceSpotify]
	if !ok {
		return models.Resolved{}, ErrNoPrimary
	}

	year := 0
	yearSource := models.SourceNone
	for _, name := range p.Order {
		c, ok := bySource[name]
		if !ok || !p.Plausible(c.Year) {
			continue
		}
		year = c.Year
		yearSource = name
		break
	}

	return models.Resolved{
		Track:      track,
		Title:      primary.Title,
		Artist:     primary.Artist,
		Year:       year,
		YearSource: yearSource,
	}, nil
}
