package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"deckify/internal/models"
)

const (
	musicBrainzRecordingURL = "https://musicbrainz.org/ws/2/recording"

	userAgent = "deckify/1.0"
)

// MusicBrainz searches the recording index for the track and takes the
// earliest dated release. MusicBrainz asks clients to stay under one
// request per second and to identify themselves with a contact address.
type MusicBrainz struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	contact string
	baseURL string
}

func NewMusicBrainz(client *retryablehttp.Client, contact string) *MusicBrainz {
	return &MusicBrainz{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		contact: contact,
		baseURL: musicBrainzRecordingURL,
	}
}

func (m *MusicBrainz) Name() models.SourceName { return models.SourceMusicBrainz }

type musicBrainzResponse struct {
	Recordings []struct {
		Releases []struct {
			Date         string `json:"date"`
			ArtistCredit []struct {
				Artist struct {
					Name string `json:"name"`
				} `json:"artist"`
			} `json:"artist-credit"`
		} `json:"releases"`
	} `json:"recordings"`
}

func (m *MusicBrainz) Lookup(ctx context.Context, q Query) (models.Candidate, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return models.Candidate{}, err
	}

	u, err := url.Parse(m.baseURL)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("musicbrainz url: %w", err)
	}
	query := u.Query()
	query.Set("query", fmt.Sprintf("artist:%q AND recording:%q", q.Artist, CleanTitle(q.Title)))
	query.Set("fmt", "json")
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Candidate{}, err
	}
	contact := m.contact
	if contact == "" {
		contact = "admin@localhost"
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s ( %s )", userAgent, contact))

	resp, err := m.client.Do(req)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("musicbrainz search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Candidate{}, fmt.Errorf("musicbrainz search status %d", resp.StatusCode)
	}

	var result musicBrainzResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Candidate{}, fmt.Errorf("musicbrainz decode: %w", err)
	}
	if len(result.Recordings) == 0 {
		return models.Candidate{}, fmt.Errorf("musicbrainz: %w", ErrNotFound)
	}

	// Earliest dated release of the best-matching recording. Compilation
	// entries credited to Various Artists carry the compilation's date,
	// not the song's.
	earliest := 0
	for _, rel := range result.Recordings[0].Releases {
		if len(rel.Date) < 4 {
			continue
		}
		if len(rel.ArtistCredit) > 0 && rel.ArtistCredit[0].Artist.Name == "Various Artists" {
			continue
		}
		y, err := strconv.Atoi(rel.Date[:4])
		if err != nil {
			continue
		}
		if y > 0 && (earliest == 0 || y < earliest) {
			earliest = y
		}
	}
	if earliest == 0 {
		return models.Candidate{}, fmt.Errorf("musicbrainz: %w: no dated releases", ErrNotFound)
	}

	return models.Candidate{Source: models.SourceMusicBrainz, Year: earliest}, nil
}
