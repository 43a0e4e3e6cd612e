// Package playlist turns a Spotify album or playlist URL into the ordered
// track list the deck is built from.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"deckify/internal/models"
	"deckify/internal/sources"
)

// ErrInvalidURL reports a link that is not a Spotify album or playlist.
var ErrInvalidURL = errors.New("invalid spotify url: expected an album or playlist link")

// NewClient builds a Spotify API client from client-credentials.
func NewClient(ctx context.Context, clientID, clientSecret string) (*spotify.Client, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)
	return spotify.New(httpClient, spotify.WithRetry(true)), nil
}

// ParseURL extracts the Spotify ID and kind ("album" or "playlist") from
// a share link or spotify: URI.
func ParseURL(link string) (id, kind string, err error) {
	for _, k := range []string{"album", "playlist"} {
		if strings.HasPrefix(link, "spotify:"+k+":") {
			return strings.TrimPrefix(link, "spotify:"+k+":"), k, nil
		}
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if (part == "album" || part == "playlist") && i+1 < len(parts) {
			id := parts[i+1]
			// Remove query params
			if idx := strings.Index(id, "?"); idx != -1 {
				id = id[:idx]
			}
			if id == "" {
				break
			}
			return id, part, nil
		}
	}
	return "", "", ErrInvalidURL
}

// ListTracks resolves the link and returns one Query per track, in the
// order the album or playlist lists them.
func ListTracks(ctx context.Context, client *spotify.Client, link string) ([]sources.Query, error) {
	id, kind, err := ParseURL(link)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "playlist":
		return listPlaylistTracks(ctx, client, spotify.ID(id))
	case "album":
		return listAlbumTracks(ctx, client, spotify.ID(id))
	}
	return nil, ErrInvalidURL
}

func listPlaylistTracks(ctx context.Context, client *spotify.Client, id spotify.ID) ([]sources.Query, error) {
	page, err := client.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", id, err)
	}

	var queries []sources.Query
	for {
		for _, item := range page.Items {
			track := item.Track.Track
			if track == nil || track.ID == "" {
				// Episodes and local files have no track entry.
				continue
			}
			queries = append(queries, newQuery(string(track.ID), track.Name, simpleArtists(track.Artists)))
		}
		err = client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page playlist %s: %w", id, err)
		}
	}
	return queries, nil
}

func listAlbumTracks(ctx context.Context, client *spotify.Client, id spotify.ID) ([]sources.Query, error) {
	album, err := client.GetAlbum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album %s: %w", id, err)
	}

	var queries []sources.Query
	page := &album.Tracks
	for {
		for _, track := range page.Tracks {
			if track.ID == "" {
				continue
			}
			queries = append(queries, newQuery(string(track.ID), track.Name, simpleArtists(track.Artists)))
		}
		err = client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page album %s: %w", id, err)
		}
	}
	return queries, nil
}

func newQuery(id, title string, artists []string) sources.Query {
	artist := ""
	if len(artists) > 0 {
		artist = artists[0]
	}
	return sources.Query{
		Track:  models.TrackID{ID: id, Platform: "spotify"},
		Title:  title,
		Artist: artist,
	}
}

func simpleArtists(artists []spotify.SimpleArtist) []string {
	var names []string
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}
