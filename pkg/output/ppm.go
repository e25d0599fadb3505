package output

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

// EncodePPM writes img as a plain-text P3 pixmap, one "r g b" triple per line
// from the top row down. Alpha is dropped.
func EncodePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return errors.Wrap(err, "write ppm header")
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return errors.Wrapf(err, "write ppm pixel (%d,%d)", x, y)
			}
		}
	}

	return errors.Wrap(bw.Flush(), "flush ppm")
}
