package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"

	"deckify/internal/models"
)

// Spotify is the catalog of record: its candidate supplies the title and
// artist unconditionally. Its year comes from the album release date,
// which often reflects a re-release rather than the original release.
type Spotify struct {
	client *spotify.Client
}

func NewSpotify(client *spotify.Client) *Spotify {
	return &Spotify{client: client}
}

func (s *Spotify) Name() models.SourceName { return models.SourceSpotify }

func (s *Spotify) Lookup(ctx context.Context, q Query) (models.Candidate, error) {
	track, err := s.client.GetTrack(ctx, spotify.ID(q.Track.ID))
	if err != nil {
		return models.Candidate{}, fmt.Errorf("spotify track %s: %w", q.Track.ID, err)
	}

	year := 0
	if len(track.Album.ReleaseDate) >= 4 {
		year, _ = strconv.Atoi(track.Album.ReleaseDate[:4])
	}

	var artists []string
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	return models.Candidate{
		Source: models.SourceSpotify,
		Title:  track.Name,
		Artist: strings.Join(artists, ", "),
		Year:   year,
	}, nil
}
