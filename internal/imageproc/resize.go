// Package imageproc provides operations for images: resizing, format conversion and thumbnail generation.
package imageproc

import (
	"image"
	"io"

	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/disintegration/imaging"
)

// Resize decodes r, drops alpha and resamples to exactly x*y pixels.
func Resize(r io.Reader, x, y int, opts Options) (io.Reader, int64, error) {
	if x <= 0 || y <= 0 {
		return nil, 0, model.ErrIncorrectAxis
	}

	img, err := Decode(r)
	if err != nil {
		return nil, 0, err
	}

	resized := imaging.Resize(DropAlpha(img), x, y, opts.Filter)

	return encodeToBuffer(resized, opts)
}

// DropAlpha returns img unchanged when it is opaque. Otherwise every alpha
// sample is forced to fully opaque; colour channels are kept as stored, no
// compositing against a background happens.
func DropAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	flat := imaging.Clone(img)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}
	return flat
}
