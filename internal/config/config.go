// Package config loads and validates the deck rendering configuration.
// Validation is strict and runs before any API call so a bad font path
// fails the run without spending request quota.
package config

import (
	"fmt"
	"image/color"
	"os"

	"github.com/pelletier/go-toml/v2"

	"deckify/internal/models"
)

// Font names a truetype font file and the starting size for its region.
type Font struct {
	Path string  `toml:"path"`
	Size float64 `toml:"size"`
}

// Config is the full rendering configuration. It is read once at startup
// and shared read-only across all card renders.
type Config struct {
	BackgroundImage   string   `toml:"background_image"`
	QRBackgroundColor string   `toml:"qr_background_color"`
	QROverlayImage    string   `toml:"qr_overlay_image"`
	QRErrorCorrection string   `toml:"qr_error_correction"`
	YearPlaceholder   string   `toml:"year_placeholder"`
	Concurrency       int      `toml:"concurrency"`
	YearSources       []string `toml:"year_sources"`
	TitleFont         Font     `toml:"title_font"`
	ArtistFont        Font     `toml:"artist_font"`
	YearFont          Font     `toml:"year_font"`
}

var errorCorrectionLevels = map[string]bool{
	"low":      true,
	"medium":   true,
	"quartile": true,
	"high":     true,
}

var sourceNames = map[string]models.SourceName{
	"spotify":     models.SourceSpotify,
	"discogs":     models.SourceDiscogs,
	"musicbrainz": models.SourceMusicBrainz,
}

// Default returns the configuration defaults applied before the TOML file
// is decoded on top of them.
func Default() Config {
	return Config{
		QRBackgroundColor: "#FFB4B4",
		QRErrorCorrection: "quartile",
		YearPlaceholder:   "?",
		Concurrency:       4,
		YearSources:       []string{"discogs", "musicbrainz", "spotify"},
		TitleFont:         Font{Size: 50},
		ArtistFont:        Font{Size: 60},
		YearFont:          Font{Size: 120},
	}
}

// Load reads the TOML config at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every path, color and enum value in the config.
func (c *Config) Validate() error {
	if c.BackgroundImage == "" {
		return fmt.Errorf("background_image must be set")
	}
	if _, err := os.Stat(c.BackgroundImage); err != nil {
		return fmt.Errorf("background_image: %w", err)
	}
	if c.QROverlayImage != "" {
		if _, err := os.Stat(c.QROverlayImage); err != nil {
			return fmt.Errorf("qr_overlay_image: %w", err)
		}
	}
	if _, err := ParseHexColor(c.QRBackgroundColor); err != nil {
		return fmt.Errorf("qr_background_color: %w", err)
	}
	if !errorCorrectionLevels[c.QRErrorCorrection] {
		return fmt.Errorf("qr_error_correction: unknown level %q", c.QRErrorCorrection)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if len(c.YearSources) == 0 {
		return fmt.Errorf("year_sources must not be empty")
	}
	for _, s := range c.YearSources {
		if _, ok := sourceNames[s]; !ok {
			return fmt.Errorf("year_sources: unknown source %q", s)
		}
	}
	for _, f := range []struct {
		key  string
		font Font
	}{
		{"title_font", c.TitleFont},
		{"artist_font", c.ArtistFont},
		{"year_font", c.YearFont},
	} {
		if f.font.Path == "" {
			return fmt.Errorf("%s.path must be set", f.key)
		}
		if _, err := os.Stat(f.font.Path); err != nil {
			return fmt.Errorf("%s.path: %w", f.key, err)
		}
		if f.font.Size <= 0 {
			return fmt.Errorf("%s.size must be positive, got %v", f.key, f.font.Size)
		}
	}
	return nil
}

// QRBackground returns the parsed QR background color. Validate must have
// succeeded first.
func (c *Config) QRBackground() color.RGBA {
	col, _ := ParseHexColor(c.QRBackgroundColor)
	return col
}

// YearPolicy returns the configured year precedence as source names.
func (c *Config) YearPolicy() []models.SourceName {
	order := make([]models.SourceName, 0, len(c.YearSources))
	for _, s := range c.YearSources {
		order = append(order, sourceNames[s])
	}
	return order
}

// ParseHexColor parses a #RRGGBB or #RGB color string.
func ParseHexColor(s string) (color.RGBA, error) {
	col := color.RGBA{A: 0xFF}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &col.R, &col.G, &col.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &col.R, &col.G, &col.B)
		col.R *= 17
		col.G *= 17
		col.B *= 17
	default:
		err = fmt.Errorf("invalid length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return col, nil
}
