package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"deckify/internal/models"
)

const discogsSearchURL = "https://api.discogs.com/database/search"

// Discogs searches the Discogs master database for the track. Masters
// catalog the original release, so search results report early years as
// strings or numbers; the earliest positive one wins.
type Discogs struct {
	client  *retryablehttp.Client
	token   string
	baseURL string
}

func NewDiscogs(client *retryablehttp.Client, token string) *Discogs {
	return &Discogs{client: client, token: token, baseURL: discogsSearchURL}
}

func (d *Discogs) Name() models.SourceName { return models.SourceDiscogs }

type discogsSearchResponse struct {
	Results []struct {
		Year any `json:"year"`
	} `json:"results"`
}

func (d *Discogs) Lookup(ctx context.Context, q Query) (models.Candidate, error) {
	if d.token == "" {
		return models.Candidate{}, fmt.Errorf("discogs: %w: no token configured", ErrNotFound)
	}

	u, err := url.Parse(d.baseURL)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("discogs url: %w", err)
	}
	query := u.Query()
	query.Set("artist", q.Artist)
	query.Set("track", CleanTitle(q.Title))
	query.Set("type", "master")
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Candidate{}, err
	}
	req.Header.Set("Authorization", "Discogs token="+d.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("discogs search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Candidate{}, fmt.Errorf("discogs search status %d", resp.StatusCode)
	}

	var result discogsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Candidate{}, fmt.Errorf("discogs decode: %w", err)
	}
	if len(result.Results) == 0 {
		return models.Candidate{}, fmt.Errorf("discogs: %w", ErrNotFound)
	}

	// Earliest year across results; results without one are ignored.
	earliest := 0
	for _, r := range result.Results {
		y := decodeYear(r.Year)
		if y > 0 && (earliest == 0 || y < earliest) {
			earliest = y
		}
	}
	if earliest == 0 {
		return models.Candidate{}, fmt.Errorf("discogs: %w: no dated results", ErrNotFound)
	}

	return models.Candidate{Source: models.SourceDiscogs, Year: earliest}, nil
}

// decodeYear tolerates the year being a JSON number or a string, both of
// which Discogs returns depending on the record.
func decodeYear(v any) int {
	switch y := v.(type) {
	case float64:
		return int(y)
	case string:
		var n int
		if _, err := fmt.Sscanf(y, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
