package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // регистрирует webp-декодер для image.Decode
)

const (
	DefaultJPEGQuality = 95
	DefaultWebPQuality = 90
)

// Options control how a processed image is resampled and encoded.
type Options struct {
	Format       Format
	Filter       imaging.ResampleFilter
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

// DefaultOptions returns Lanczos resampling with default qualities for the given format.
func DefaultOptions(format Format) Options {
	return Options{
		Format:      format,
		Filter:      imaging.Lanczos,
		JPEGQuality: DefaultJPEGQuality,
		WebPQuality: DefaultWebPQuality,
	}
}

// Decode reads an image of any registered format. Stored pixel layout is kept as is, EXIF orientation is ignored.
func Decode(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, model.ErrEmptySource
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Encode writes img to w in opts.Format.
func Encode(w io.Writer, img image.Image, opts Options) error {
	if opts.Format == WEBP {
		return webp.Encode(w, img, &webp.Options{
			Lossless: opts.WebPLossless,
			Quality:  opts.WebPQuality,
		})
	}

	f, ok := imagingFormats[opts.Format]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, opts.Format)
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	return imaging.Encode(w, img, f, imaging.JPEGQuality(quality))
}

func encodeToBuffer(img image.Image, opts Options) (io.Reader, int64, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, 0, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return &buf, int64(buf.Len()), nil
}
