// Package qr encodes a track's deep link into a styled QR bitmap.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/url"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// ErrEncode reports an unencodable payload: empty, malformed, or larger
// than the selected error-correction level can carry.
var ErrEncode = errors.New("qr encode failed")

// Options style the QR bitmap. The foreground stays black: printed cards
// get scanned from paper, and module contrast against the background is
// what keeps them readable after print degradation.
type Options struct {
	Background color.Color
	Level      string
	Overlay    image.Image
}

var levels = map[string]qrcode.EncodeOption{
	"low":      qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow),
	"medium":   qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
	"quartile": qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart),
	"high":     qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest),
}

// Encode renders rawURL as a QR image. The URL must carry a scheme and
// host; it is re-serialized through net/url so the encoded payload is
// always percent-encoded canonically.
func Encode(rawURL string, opts Options) (image.Image, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty url", ErrEncode)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: not an absolute url: %q", ErrEncode, rawURL)
	}

	level, ok := levels[opts.Level]
	if !ok {
		level = qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	}

	qrc, err := qrcode.NewWith(u.String(), level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	imageOpts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithBgColor(bg),
		standard.WithFgColor(color.RGBA{A: 0xFF}),
		standard.WithQRWidth(10),
	}
	if opts.Overlay != nil {
		imageOpts = append(imageOpts, standard.WithLogoImage(opts.Overlay))
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf}, imageOpts...)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return img, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
