// Package qr renders payment links as PNG QR codes.
package qr

import (
	"bytes"
	"fmt"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// Encoder renders arbitrary text into an image.
type Encoder interface {
	PNG(content string) ([]byte, error)
}

// PNGEncoder draws black-on-white QR codes.
type PNGEncoder struct {
	// ModuleSize is the pixel width of one QR module; 0 means 10.
	ModuleSize uint8
	// Border is the quiet zone in pixels; 0 means 5 modules.
	Border int
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// PNG encodes content as a QR code and returns the PNG bytes.
func (e PNGEncoder) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: empty content")
	}
	size := e.ModuleSize
	if size == 0 {
		size = 10
	}
	border := e.Border
	if border <= 0 {
		border = 5 * int(size)
	}

	code, err := qrcode.New(content)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	buf := &bytes.Buffer{}
	w := standard.NewWithWriter(nopCloser{buf},
		standard.WithQRWidth(size),
		standard.WithBorderWidth(border),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := code.Save(w); err != nil {
		return nil, fmt.Errorf("qr: render: %w", err)
	}
	return buf.Bytes(), nil
}
