// Package convert holds small image plumbing shared by the renderer and
// the share-image pipeline: PNG encode/decode into NRGBA and center
// cropping of oversized captures.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// EncodePNG serializes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("convert: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG parses PNG bytes into an NRGBA image, converting other pixel
// formats as needed.
func DecodePNG(data []byte) (*image.NRGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: png decode: %w", err)
	}
	if n, ok := img.(*image.NRGBA); ok {
		return n, nil
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

// CenterCrop returns the centered w x h window of img. The source must be
// at least w x h; 크기가 더 크면 가운데를 잘라 사용한다.
func CenterCrop(img *image.NRGBA, w, h int) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() < w || b.Dy() < h {
		return nil, fmt.Errorf("convert: source %dx%d smaller than crop %dx%d", b.Dx(), b.Dy(), w, h)
	}

	startX := b.Min.X + (b.Dx()-w)/2
	startY := b.Min.Y + (b.Dy()-h)/2

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, image.Pt(startX, startY), draw.Src)
	return out, nil
}
