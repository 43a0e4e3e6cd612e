package deck_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"deckify/internal/deck"
	"deckify/internal/models"
	"deckify/internal/resolve"
	"deckify/internal/sources"
)

type stubSource struct {
	name   models.SourceName
	lookup func(ctx context.Context, q sources.Query) (models.Candidate, error)
}

func (s *stubSource) Name() models.SourceName { return s.name }

func (s *stubSource) Lookup(ctx context.Context, q sources.Query) (models.Candidate, error) {
	return s.lookup(ctx, q)
}

func spotifyStub() *stubSource {
	return &stubSource{name: models.SourceSpotify, lookup: func(_ context.Context, q sources.Query) (models.Candidate, error) {
		return models.Candidate{Source: models.SourceSpotify, Title: q.Title, Artist: q.Artist, Year: 2010}, nil
	}}
}

func absentStub(name models.SourceName) *stubSource {
	return &stubSource{name: name, lookup: func(context.Context, sources.Query) (models.Candidate, error) {
		return models.Candidate{}, sources.ErrNotFound
	}}
}

type stubRenderer struct{}

func (stubRenderer) Render(rec models.Resolved, qrImg image.Image) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func queries(n int) []sources.Query {
	out := make([]sources.Query, n)
	for i := range out {
		out[i] = sources.Query{
			Track:  models.TrackID{ID: fmt.Sprintf("track%02d", i), Platform: "spotify"},
			Title:  fmt.Sprintf("Song %d", i),
			Artist: "Artist",
		}
	}
	return out
}

func newPipeline(primary sources.Source, secondary ...sources.Source) *deck.Pipeline {
	return &deck.Pipeline{
		Primary:     primary,
		Secondary:   secondary,
		Policy:      resolve.NewPolicy(nil),
		Renderer:    &stubRenderer{},
		Concurrency: 4,
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	// Later tracks finish first; output order must still match input.
	primary := &stubSource{name: models.SourceSpotify, lookup: func(_ context.Context, q sources.Query) (models.Candidate, error) {
		var i int
		fmt.Sscanf(q.Track.ID, "track%02d", &i)
		time.Sleep(time.Duration(8-i) * 2 * time.Millisecond)
		return models.Candidate{Source: models.SourceSpotify, Title: q.Title, Artist: q.Artist, Year: 2000 + i}, nil
	}}
	p := newPipeline(primary, absentStub(models.SourceDiscogs), absentStub(models.SourceMusicBrainz))

	in := queries(8)
	cards, statuses := p.Build(context.Background(), in)
	if len(cards) != 8 || len(statuses) != 8 {
		t.Fatalf("expected 8 cards and statuses, got %d/%d", len(cards), len(statuses))
	}
	for i, c := range cards {
		if c.Index != i || c.Record.Track.ID != in[i].Track.ID {
			t.Fatalf("card %d out of order: index %d track %s", i, c.Index, c.Record.Track.ID)
		}
	}
	for i, st := range statuses {
		if !st.OK || st.Index != i {
			t.Fatalf("status %d unexpected: %+v", i, st)
		}
	}
}

func TestBuildYearFromSecondarySource(t *testing.T) {
	discogs := &stubSource{name: models.SourceDiscogs, lookup: func(context.Context, sources.Query) (models.Candidate, error) {
		return models.Candidate{Source: models.SourceDiscogs, Year: 1978}, nil
	}}
	p := newPipeline(spotifyStub(), discogs, absentStub(models.SourceMusicBrainz))

	cards, statuses := p.Build(context.Background(), queries(1))
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Record.Year != 1978 || cards[0].Record.YearSource != models.SourceDiscogs {
		t.Fatalf("expected discogs year, got %+v", cards[0].Record)
	}
	if statuses[0].Year != 1978 || statuses[0].YearSource != models.SourceDiscogs {
		t.Fatalf("status missing year info: %+v", statuses[0])
	}
}

func TestBuildPrimaryFailureSkipsTrackOnly(t *testing.T) {
	primary := &stubSource{name: models.SourceSpotify, lookup: func(_ context.Context, q sources.Query) (models.Candidate, error) {
		if q.Track.ID == "track01" {
			return models.Candidate{}, errors.New("boom")
		}
		return models.Candidate{Source: models.SourceSpotify, Title: q.Title, Artist: q.Artist, Year: 2010}, nil
	}}
	p := newPipeline(primary, absentStub(models.SourceDiscogs), absentStub(models.SourceMusicBrainz))

	cards, statuses := p.Build(context.Background(), queries(3))
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Index != 0 || cards[1].Index != 2 {
		t.Fatalf("unexpected surviving indices %d/%d", cards[0].Index, cards[1].Index)
	}
	if statuses[1].OK || statuses[1].Reason == "" {
		t.Fatalf("expected failure status for skipped track, got %+v", statuses[1])
	}
}

func TestBuildEncodeFailureFatalForCardOnly(t *testing.T) {
	p := newPipeline(spotifyStub(), absentStub(models.SourceDiscogs), absentStub(models.SourceMusicBrainz))

	in := queries(3)
	in[1].Track.ID = "" // no ID means no deep link to encode

	cards, statuses := p.Build(context.Background(), in)
	if len(cards) != 2 {
		t.Fatalf("expected deck to continue past encode failure, got %d cards", len(cards))
	}
	if statuses[1].OK {
		t.Fatalf("expected encode failure status, got %+v", statuses[1])
	}
	if statuses[0].OK != true || statuses[2].OK != true {
		t.Fatalf("other tracks should succeed: %+v", statuses)
	}
}

func TestBuildCanceledContextAdmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(spotifyStub(), absentStub(models.SourceDiscogs))
	p.Concurrency = 1

	cards, statuses := p.Build(ctx, queries(4))
	if len(cards) != 0 {
		t.Fatalf("expected no cards after cancellation, got %d", len(cards))
	}
	for _, st := range statuses {
		if st.OK {
			t.Fatalf("expected canceled status, got %+v", st)
		}
	}
}
