package renderer

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ComposeAnaglyph merges a stereo pair into a red/cyan anaglyph: red comes
// from the left eye, green and blue from the right eye
func ComposeAnaglyph(left, right *image.RGBA) (*image.RGBA, error) {
	if err := checkPair(left, right); err != nil {
		return nil, err
	}

	bounds := left.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			l := left.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			r := right.RGBAAt(right.Bounds().Min.X+x, right.Bounds().Min.Y+y)
			out.SetRGBA(x, y, color.RGBA{R: l.R, G: r.G, B: r.B, A: 255})
		}
	}
	return out, nil
}

// ComposeSideBySide places the left eye on the left half and the right eye
// on the right half of an image twice as wide
func ComposeSideBySide(left, right *image.RGBA) (*image.RGBA, error) {
	if err := checkPair(left, right); err != nil {
		return nil, err
	}

	w, h := left.Bounds().Dx(), left.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, 2*w, h))
	draw.Draw(out, image.Rect(0, 0, w, h), left, left.Bounds().Min, draw.Src)
	draw.Draw(out, image.Rect(w, 0, 2*w, h), right, right.Bounds().Min, draw.Src)
	return out, nil
}

func checkPair(left, right *image.RGBA) error {
	if left == nil || right == nil {
		return fmt.Errorf("stereo pair is missing an eye")
	}
	if left.Bounds().Size() != right.Bounds().Size() {
		return fmt.Errorf("stereo pair size mismatch: left %v, right %v",
			left.Bounds().Size(), right.Bounds().Size())
	}
	return nil
}
