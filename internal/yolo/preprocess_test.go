package yolo

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestLetterboxWideImage(t *testing.T) {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, red)
		}
	}

	dst := make([]float32, 3*size*size)
	lb := letterbox(img, size, dst)

	if math.Abs(lb.scale-0.64) > 1e-9 {
		t.Fatalf("scale = %v, want 0.64", lb.scale)
	}
	if lb.padX != 0 {
		t.Fatalf("padX = %v, want 0", lb.padX)
	}
	if lb.padY != 16 {
		t.Fatalf("padY = %v, want 16", lb.padY)
	}

	plane := size * size
	pad := float32(114.0 / 255.0)

	// Top rows are padding.
	for _, idx := range []int{0, size - 1, 4*size + 17} {
		for c := 0; c < 3; c++ {
			if got := dst[c*plane+idx]; got != pad {
				t.Fatalf("padding pixel %d channel %d = %v, want %v", idx, c, got, pad)
			}
		}
	}

	// Center of the canvas lands inside the scaled image.
	center := (size/2)*size + size/2
	if got := dst[center]; got != 1 {
		t.Fatalf("center red channel = %v, want 1", got)
	}
	if got := dst[plane+center]; got != 0 {
		t.Fatalf("center green channel = %v, want 0", got)
	}
}

func TestLetterboxSquareImageHasNoPadding(t *testing.T) {
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))

	dst := make([]float32, 3*size*size)
	lb := letterbox(img, size, dst)

	if lb.scale != 0.25 || lb.padX != 0 || lb.padY != 0 {
		t.Fatalf("params = %+v", lb)
	}
}
