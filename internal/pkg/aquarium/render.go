package aquarium

import (
	"hash/fnv"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

var waterColor = color.NRGBA{R: 0x0b, G: 0x2a, B: 0x4a, A: 0xff}

// RenderPNG draws frame at its native size and scales the longer side to
// size before encoding. size <= 0 keeps the native size.
func RenderPNG(w io.Writer, frame Frame, size int) error {
	img := Draw(frame)
	if size > 0 {
		if img.Bounds().Dx() >= img.Bounds().Dy() {
			img = imaging.Resize(img, size, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, size, imaging.Lanczos)
		}
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// Draw plots every outline of frame onto a fresh canvas.
func Draw(frame Frame) *image.NRGBA {
	width := max(1, int(math.Ceil(frame.Width)))
	height := max(1, int(math.Ceil(frame.Height)))
	img := imaging.New(width, height, waterColor)

	for _, f := range frame.Fish {
		c := fishColor(f.ID)
		shape := f.Shape
		if len(shape) == 0 {
			shape = Shape(f.Fish, DefaultCurvePoints)
		}
		for _, p := range shape {
			x, y := int(p.X), int(p.Y)
			if x < 0 || y < 0 || x >= width || y >= height {
				continue
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// fishColor derives a stable bright colour from the fish id.
func fishColor(id string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum32()
	return color.NRGBA{
		R: 0x80 | uint8(sum),
		G: 0x80 | uint8(sum>>8),
		B: 0x80 | uint8(sum>>16),
		A: 0xff,
	}
}
