package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"deckify/internal/card"
	"deckify/internal/config"
	"deckify/internal/deck"
	"deckify/internal/models"
	"deckify/internal/playlist"
	"deckify/internal/qr"
	"deckify/internal/resolve"
	"deckify/internal/sources"
)

func main() {
	configPath := flag.String("config", "deckify.toml", "Path to TOML config file")
	outputDir := flag.String("output", "cards", "Output directory for card images")
	deckName := flag.String("name", "deck", "Base name for the generated cards")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: deckify [flags] <spotify album or playlist url>")
	}

	if err := run(*configPath, *outputDir, *deckName, flag.Arg(0)); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(configPath, outputDir, deckName, link string) error {
	_ = godotenv.Load()

	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET environment variables must be set")
	}

	// Config is validated before any API call so a bad font path cannot
	// waste request quota.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	renderer, err := card.NewRenderer(cfg)
	if err != nil {
		return err
	}

	qrOpts := qr.Options{
		Background: cfg.QRBackground(),
		Level:      cfg.QRErrorCorrection,
	}
	if cfg.QROverlayImage != "" {
		overlay, err := gg.LoadImage(cfg.QROverlayImage)
		if err != nil {
			return fmt.Errorf("failed to load qr overlay %s: %w", cfg.QROverlayImage, err)
		}
		qrOpts.Overlay = overlay
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spotifyClient, err := playlist.NewClient(ctx, clientID, clientSecret)
	if err != nil {
		return fmt.Errorf("failed to setup spotify client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 5
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = 15 * time.Second

	queries, err := playlist.ListTracks(ctx, spotifyClient, link)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d tracks from %s", len(queries), link)

	pipeline := &deck.Pipeline{
		Primary: sources.NewSpotify(spotifyClient),
		Secondary: []sources.Source{
			sources.NewDiscogs(retryClient, os.Getenv("DISCOGS_TOKEN")),
			sources.NewMusicBrainz(retryClient, os.Getenv("MUSICBRAINZ_CONTACT")),
		},
		Policy:      resolve.NewPolicy(cfg.YearPolicy()),
		Renderer:    renderer,
		QR:          qrOpts,
		Concurrency: cfg.Concurrency,
	}

	cards, statuses := pipeline.Build(ctx, queries)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := models.SanitizeName(deckName)
	for _, c := range cards {
		path := filepath.Join(outputDir, fmt.Sprintf("%s-%d.png", base, c.Index))
		if err := savePNG(path, c); err != nil {
			return err
		}
	}

	printStatuses(statuses)
	log.Printf("Wrote %d of %d cards to %s", len(cards), len(queries), outputDir)
	return nil
}

func savePNG(path string, c deck.Card) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, c.Image); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func printStatuses(statuses []models.Status) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Year", "Year Source", "Result"})
	for _, st := range statuses {
		year := "-"
		if st.Year != 0 {
			year = fmt.Sprintf("%d", st.Year)
		}
		result := "ok"
		if !st.OK {
			result = st.Reason
		}
		t.AppendRow(table.Row{st.Index, st.Title, year, string(st.YearSource), result})
	}
	t.Render()
}
