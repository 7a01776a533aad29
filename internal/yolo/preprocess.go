package yolo

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// letterboxParams records how the source image was fitted into the square
// network input, so detections can be mapped back to source pixels.
type letterboxParams struct {
	scale float64
	padX  float64
	padY  float64
}

// letterbox scales the image into a size×size canvas preserving aspect
// ratio, pads the borders with neutral gray, and writes the result into
// dst as planar CHW float32 normalized to [0,1]. dst must hold
// 3*size*size values.
func letterbox(img image.Image, size int, dst []float32) letterboxParams {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := float64(size) / float64(w)
	if s := float64(size) / float64(h); s < scale {
		scale = s
	}
	scaledW := int(float64(w) * scale)
	scaledH := int(float64(h) * scale)
	padX := float64(size-scaledW) / 2
	padY := float64(size-scaledH) / 2

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	gray := color.RGBA{R: 114, G: 114, B: 114, A: 255}
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = gray.R
		canvas.Pix[i+1] = gray.G
		canvas.Pix[i+2] = gray.B
		canvas.Pix[i+3] = gray.A
	}

	target := image.Rect(int(padX), int(padY), int(padX)+scaledW, int(padY)+scaledH)
	xdraw.ApproxBiLinear.Scale(canvas, target, img, bounds, xdraw.Src, nil)

	plane := size * size
	for y := 0; y < size; y++ {
		row := y * canvas.Stride
		for x := 0; x < size; x++ {
			off := row + x*4
			idx := y*size + x
			dst[idx] = float32(canvas.Pix[off]) / 255
			dst[plane+idx] = float32(canvas.Pix[off+1]) / 255
			dst[2*plane+idx] = float32(canvas.Pix[off+2]) / 255
		}
	}

	return letterboxParams{scale: scale, padX: padX, padY: padY}
}
