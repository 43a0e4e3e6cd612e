// Package deck orchestrates lookups, reconciliation and rendering across
// an ordered track list.
package deck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"deckify/internal/models"
	"deckify/internal/qr"
	"deckify/internal/resolve"
	"deckify/internal/sources"
)

// Renderer renders one resolved record with its QR bitmap. Satisfied by
// *card.Renderer.
type Renderer interface {
	Render(rec models.Resolved, qrImg image.Image) (image.Image, error)
}

// Card is one rendered deck entry. Index is the track's position in the
// input order and drives the output file name.
type Card struct {
	Index  int
	Record models.Resolved
	Image  image.Image
}

// Pipeline builds a deck. Primary is the Spotify source: its failure
// skips the track. Secondary sources only contribute year candidates and
// may fail freely.
type Pipeline struct {
	Primary     sources.Source
	Secondary   []sources.Source
	Policy      resolve.Policy
	Renderer    Renderer
	QR          qr.Options
	Concurrency int
}

// Build processes every track and returns the rendered cards plus one
// status per input track, both in input order. It never fails as a
// whole: each track's problems end up in its status entry.
func (p *Pipeline) Build(ctx context.Context, queries []sources.Query) ([]Card, []models.Status) {
	n := len(queries)
	cards := make([]*Card, n)
	statuses := make([]models.Status, n)

	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, q := range queries {
		canceled := ctx.Err() != nil
		if !canceled {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				canceled = true
			}
		}
		if canceled {
			// Stop admitting new tracks; in-flight ones finish below.
			statuses[i] = models.Status{
				Track: q.Track, Index: i, Title: q.Title,
				YearSource: models.SourceNone, Reason: "canceled",
			}
			continue
		}

		wg.Add(1)
		go func(i int, q sources.Query) {
			defer wg.Done()
			defer func() { <-sem }()
			cards[i], statuses[i] = p.process(ctx, i, q)
		}(i, q)
	}
	wg.Wait()

	out := make([]Card, 0, n)
	for i := range cards {
		if cards[i] != nil {
			out = append(out, *cards[i])
		}
	}
	return out, statuses
}

func (p *Pipeline) process(ctx context.Context, index int, q sources.Query) (*Card, models.Status) {
	st := models.Status{Track: q.Track, Index: index, Title: q.Title, YearSource: models.SourceNone}

	all := append([]sources.Source{p.Primary}, p.Secondary...)
	candidates := make([]models.Candidate, len(all))
	errs := make([]error, len(all))

	// The per-track lookups are independent network calls; run them
	// together and wait for all of them before reconciling.
	var wg sync.WaitGroup
	for j, src := range all {
		wg.Add(1)
		go func(j int, src sources.Source) {
			defer wg.Done()
			candidates[j], errs[j] = src.Lookup(ctx, q)
		}(j, src)
	}
	wg.Wait()

	if errs[0] != nil {
		st.Reason = fmt.Sprintf("spotify lookup failed: %v", errs[0])
		return nil, st
	}

	found := []models.Candidate{candidates[0]}
	for j := 1; j < len(all); j++ {
		if errs[j] != nil {
			if !errors.Is(errs[j], sources.ErrNotFound) {
				log.Printf("%s lookup failed for %q: %v", all[j].Name(), q.Title, errs[j])
			}
			continue
		}
		found = append(found, candidates[j])
	}

	rec, err := resolve.Resolve(q.Track, found, p.Policy)
	if err != nil {
		st.Reason = fmt.Sprintf("reconciliation failed: %v", err)
		return nil, st
	}
	st.Title = rec.Title
	st.Year = rec.Year
	st.YearSource = rec.YearSource

	qrImg, err := qr.Encode(q.Track.URL(), p.QR)
	if err != nil {
		st.Reason = fmt.Sprintf("qr encode failed: %v", err)
		return nil, st
	}

	img, err := p.Renderer.Render(rec, qrImg)
	if err != nil {
		st.Reason = fmt.Sprintf("render failed: %v", err)
		return nil, st
	}

	st.OK = true
	return &Card{Index: index, Record: rec, Image: img}, st
}
