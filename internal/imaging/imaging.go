// Package imaging prepares raster assets for embedding: decoding uploads,
// fitting them into a box, fading them for watermarks and re-encoding as PNG.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the canvas Decode will allocate.
const MaxPixels = 4096 * 4096

var (
	// ErrEmpty is returned for zero-length image data.
	ErrEmpty = errors.New("imaging: empty image data")
	// ErrTooManyPixels is returned when the header declares a canvas
	// larger than MaxPixels.
	ErrTooManyPixels = errors.New("imaging: image dimensions exceed limit")
)

// Decode reads a PNG, JPEG, GIF or WebP image. The header is checked
// against MaxPixels before any pixel data is read.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrTooManyPixels, format, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("imaging: %s image has no pixels", format)
	}
	return img, nil
}

// DecodeDataURL returns the payload of a data: URI. Both base64 and
// percent-encoded payloads are accepted.
func DecodeDataURL(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New("imaging: not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("imaging: data URL has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("imaging: data URL base64: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: data URL payload: %w", err)
	}
	return []byte(s), nil
}

// ScaleToBox fits img into w×h pixels preserving aspect ratio. The result
// is exactly w×h; unused space stays transparent and the image is centred.
func ScaleToBox(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := img.Bounds()
	if w <= 0 || h <= 0 || sb.Empty() {
		return dst
	}
	sw, sh := sb.Dx(), sb.Dy()
	tw, th := w, h
	if sw*h > sh*w {
		th = sh * w / sw
	} else {
		tw = sw * h / sh
	}
	tw, th = max(tw, 1), max(th, 1)
	x0, y0 := (w-tw)/2, (h-th)/2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+tw, y0+th), img, sb, draw.Over, nil)
	return dst
}

// ApplyOpacity multiplies every pixel's alpha by alpha (0..1).
func ApplyOpacity(img image.Image, alpha float64) image.Image {
	alpha = min(max(alpha, 0), 1)
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = uint8(float64(c.A)*alpha + 0.5)
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

// EncodeEmbeddable encodes img as PNG, the one raster format the document
// writer embeds.
func EncodeEmbeddable(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PixelsFor converts a physical length in millimetres to pixels at dpi.
func PixelsFor(mm, dpi float64) int {
	return max(int(mm/25.4*dpi+0.5), 1)
}
