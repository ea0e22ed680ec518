package imageproc

import (
	"io"

	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/disintegration/imaging"
)

// Thumbnail scales and centre-crops r to fill exactly x*y pixels.
func Thumbnail(r io.Reader, x, y int, opts Options) (io.Reader, int64, error) {
	if x <= 0 || y <= 0 {
		return nil, 0, model.ErrIncorrectAxis
	}

	img, err := Decode(r)
	if err != nil {
		return nil, 0, err
	}
	thumb := imaging.Thumbnail(DropAlpha(img), x, y, opts.Filter)

	return encodeToBuffer(thumb, opts)
}
