package config_test

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"deckify/internal/config"
	"deckify/internal/models"
)

func writeFixtures(t *testing.T) (fontPath, bgPath string) {
	t.Helper()
	dir := t.TempDir()

	fontPath = filepath.Join(dir, "test.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0644); err != nil {
		t.Fatalf("failed to write font: %v", err)
	}

	bgPath = filepath.Join(dir, "frame.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 14))); err != nil {
		t.Fatalf("failed to encode background: %v", err)
	}
	if err := os.WriteFile(bgPath, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write background: %v", err)
	}
	return fontPath, bgPath
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deckify.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	fontPath, bgPath := writeFixtures(t)
	path := writeConfig(t, `
background_image = "`+bgPath+`"

[title_font]
path = "`+fontPath+`"

[artist_font]
path = "`+fontPath+`"

[year_font]
path = "`+fontPath+`"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YearPlaceholder != "?" {
		t.Fatalf("unexpected year placeholder %q", cfg.YearPlaceholder)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("unexpected concurrency %d", cfg.Concurrency)
	}
	if cfg.QRErrorCorrection != "quartile" {
		t.Fatalf("unexpected error correction %q", cfg.QRErrorCorrection)
	}
	if cfg.TitleFont.Size != 50 || cfg.ArtistFont.Size != 60 || cfg.YearFont.Size != 120 {
		t.Fatalf("unexpected default font sizes: %+v", cfg)
	}

	want := []models.SourceName{models.SourceDiscogs, models.SourceMusicBrainz, models.SourceSpotify}
	got := cfg.YearPolicy()
	if len(got) != len(want) {
		t.Fatalf("unexpected year policy %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected year policy %v", got)
		}
	}

	bg := cfg.QRBackground()
	if bg.R != 0xFF || bg.G != 0xB4 || bg.B != 0xB4 {
		t.Fatalf("unexpected qr background %+v", bg)
	}
}

func TestLoadMissingFontFails(t *testing.T) {
	_, bgPath := writeFixtures(t)
	path := writeConfig(t, `
background_image = "`+bgPath+`"

[title_font]
path = "/nonexistent/font.ttf"

[artist_font]
path = "/nonexistent/font.ttf"

[year_font]
path = "/nonexistent/font.ttf"
`)

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing font")
	}
	if !strings.Contains(err.Error(), "title_font.path") {
		t.Fatalf("expected the offending key in the error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	fontPath, bgPath := writeFixtures(t)

	base := `
background_image = "` + bgPath + `"

[title_font]
path = "` + fontPath + `"

[artist_font]
path = "` + fontPath + `"

[year_font]
path = "` + fontPath + `"
`
	cases := []struct {
		name    string
		extra   string
		wantSub string
	}{
		{"bad hex color", "qr_background_color = \"pinkish\"\n", "qr_background_color"},
		{"unknown ec level", "qr_error_correction = \"maximum\"\n", "qr_error_correction"},
		{"zero concurrency", "concurrency = 0\n", "concurrency"},
		{"unknown year source", "year_sources = [\"lastfm\"]\n", "year_sources"},
	}
	for _, tc := range cases {
		_, err := config.Load(writeConfig(t, tc.extra+base))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Fatalf("%s: expected %q in error, got %v", tc.name, tc.wantSub, err)
		}
	}
}

func TestParseHexColorShortForm(t *testing.T) {
	col, err := config.ParseHexColor("#F0A")
	if err != nil {
		t.Fatalf("ParseHexColor returned error: %v", err)
	}
	if col.R != 0xFF || col.G != 0x00 || col.B != 0xAA {
		t.Fatalf("unexpected color %+v", col)
	}
}
