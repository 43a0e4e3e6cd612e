// Package card composes resolved track metadata and a QR bitmap onto the
// fixed-size printable card template.
package card

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"deckify/internal/config"
	"deckify/internal/models"
)

// Template geometry. Cards are printed at a fixed size, so every value
// here is a constant of the template, not configuration.
const (
	Width  = 750
	Height = 1050

	qrFootprint = 200
	qrInset     = 20

	// Each text row is centered on its own baseline band.
	artistCenterY = 405
	titleCenterY  = 475
	yearCenterY   = 640

	textRegionW = 620.0

	minFontSize  = 18.0
	fontSizeStep = 2.0

	ellipsis = "…"
)

// Renderer renders cards from one validated config. The background
// template and fonts are loaded once and shared read-only; every render
// draws onto its own copy of the template.
type Renderer struct {
	cfg        *config.Config
	background *image.RGBA
	titleFont  *truetype.Font
	artistFont *truetype.Font
	yearFont   *truetype.Font
}

func NewRenderer(cfg *config.Config) (*Renderer, error) {
	bg, err := gg.LoadImage(cfg.BackgroundImage)
	if err != nil {
		return nil, fmt.Errorf("failed to load background %s: %w", cfg.BackgroundImage, err)
	}

	template := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(template, template.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(template, template.Bounds(), bg, bg.Bounds(), draw.Over, nil)

	titleFont, err := loadFont(cfg.TitleFont.Path)
	if err != nil {
		return nil, err
	}
	artistFont, err := loadFont(cfg.ArtistFont.Path)
	if err != nil {
		return nil, err
	}
	yearFont, err := loadFont(cfg.YearFont.Path)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		cfg:        cfg,
		background: template,
		titleFont:  titleFont,
		artistFont: artistFont,
		yearFont:   yearFont,
	}, nil
}

// Render composes one card. The output is a flattened RGBA image in the
// template dimensions; an unresolved year renders the configured
// placeholder so the layout stays identical across the deck.
func (r *Renderer) Render(rec models.Resolved, qrImg image.Image) (image.Image, error) {
	if qrImg == nil {
		return nil, fmt.Errorf("nil qr image for track %s", rec.Track.ID)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	copy(dst.Pix, r.background.Pix)

	for _, corner := range []image.Point{
		{qrInset, qrInset},
		{Width - qrInset - qrFootprint, qrInset},
		{qrInset, Height - qrInset - qrFootprint},
		{Width - qrInset - qrFootprint, Height - qrInset - qrFootprint},
	} {
		rect := image.Rect(corner.X, corner.Y, corner.X+qrFootprint, corner.Y+qrFootprint)
		xdraw.CatmullRom.Scale(dst, rect, qrImg, qrImg.Bounds(), draw.Src, nil)
	}

	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(color.Black)

	yearText := r.cfg.YearPlaceholder
	if rec.Year != 0 {
		yearText = strconv.Itoa(rec.Year)
	}

	drawRow(dc, r.artistFont, rec.Artist, r.cfg.ArtistFont.Size, artistCenterY)
	drawRow(dc, r.titleFont, rec.Title, r.cfg.TitleFont.Size, titleCenterY)
	drawRow(dc, r.yearFont, yearText, r.cfg.YearFont.Size, yearCenterY)

	return dst, nil
}

func drawRow(dc *gg.Context, fnt *truetype.Font, text string, startSize, centerY float64) {
	face, fitted := fitText(dc, fnt, text, startSize)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(fitted, Width/2, centerY, 0.5, 0.5)
}

// fitText shrinks the font size in fixed steps until the text fits the
// region, then truncates with an ellipsis at the floor size. The same
// text, region and starting size always produce the same result.
func fitText(dc *gg.Context, fnt *truetype.Font, text string, startSize float64) (font.Face, string) {
	for size := startSize; size >= minFontSize; size -= fontSizeStep {
		face := truetype.NewFace(fnt, &truetype.Options{Size: size})
		dc.SetFontFace(face)
		if w, _ := dc.MeasureString(text); w <= textRegionW {
			return face, text
		}
	}

	face := truetype.NewFace(fnt, &truetype.Options{Size: minFontSize})
	dc.SetFontFace(face)
	runes := []rune(text)
	for len(runes) > 0 {
		truncated := string(runes) + ellipsis
		if w, _ := dc.MeasureString(truncated); w <= textRegionW {
			return face, truncated
		}
		runes = runes[:len(runes)-1]
	}
	return face, ellipsis
}

func loadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	fnt, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return fnt, nil
}
