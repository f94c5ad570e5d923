package convert

import (
	"image"
	"image/color"
	"testing"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xFF})
		}
	}
	return img
}

func TestPNGRoundTrip(t *testing.T) {
	want := gradient(40, 30)

	data, err := EncodePNG(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePNG(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Bounds() != want.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), want.Bounds())
	}
	for y := 0; y < 30; y += 7 {
		for x := 0; x < 40; x += 7 {
			if got.NRGBAAt(x, y) != want.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.NRGBAAt(x, y), want.NRGBAAt(x, y))
			}
		}
	}
}

func TestDecodePNG_Invalid(t *testing.T) {
	if _, err := DecodePNG([]byte("not a png")); err == nil {
		t.Error("expected decode error")
	}
}

func TestCenterCrop(t *testing.T) {
	src := gradient(100, 80)

	got, err := CenterCrop(src, 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds().Dx() != 40 || got.Bounds().Dy() != 20 {
		t.Fatalf("crop size = %v", got.Bounds())
	}

	// (0,0) of the crop maps to (30,30) of the source.
	if want := src.NRGBAAt(30, 30); got.NRGBAAt(0, 0) != want {
		t.Errorf("crop origin = %v, want %v", got.NRGBAAt(0, 0), want)
	}
}

func TestCenterCrop_ExactSize(t *testing.T) {
	src := gradient(40, 20)
	got, err := CenterCrop(src, 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got.NRGBAAt(5, 5) != src.NRGBAAt(5, 5) {
		t.Error("exact-size crop altered pixels")
	}
}

func TestCenterCrop_TooSmall(t *testing.T) {
	if _, err := CenterCrop(gradient(30, 30), 40, 20); err == nil {
		t.Error("expected error for undersized source")
	}
}
