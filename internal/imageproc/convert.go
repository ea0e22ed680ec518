package imageproc

import "io"

// Convert re-encodes r in opts.Format without touching its pixels.
func Convert(r io.Reader, opts Options) (io.Reader, int64, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, 0, err
	}
	return encodeToBuffer(img, opts)
}
