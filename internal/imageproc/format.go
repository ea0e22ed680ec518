package imageproc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/disintegration/imaging"
)

// Format is an output encoding supported by Encode.
type Format int

const (
	JPEG Format = iota
	PNG
	GIF
	TIFF
	BMP
	WEBP
)

var formatNames = map[string]Format{
	"JPG":  JPEG,
	"JPEG": JPEG,
	"PNG":  PNG,
	"GIF":  GIF,
	"TIF":  TIFF,
	"TIFF": TIFF,
	"BMP":  BMP,
	"WEBP": WEBP,
}

var imagingFormats = map[Format]imaging.Format{
	JPEG: imaging.JPEG,
	PNG:  imaging.PNG,
	GIF:  imaging.GIF,
	TIFF: imaging.TIFF,
	BMP:  imaging.BMP,
}

var contentTypes = map[Format]string{
	JPEG: model.JPEG,
	PNG:  model.PNG,
	GIF:  model.GIF,
	TIFF: model.TIFF,
	BMP:  model.BMP,
	WEBP: model.WEBP,
}

func (f Format) String() string {
	switch f {
	case JPEG:
		return "JPEG"
	case PNG:
		return "PNG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case WEBP:
		return "WEBP"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FormatFromName resolves a format code such as "jpeg" or "WEBP". Case is ignored.
func FormatFromName(name string) (Format, error) {
	f, ok := formatNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return -1, fmt.Errorf("%w: %q", model.ErrUnsupportedFormat, name)
	}
	return f, nil
}

// FormatFromFilename infers the format from the file extension.
func FormatFromFilename(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return -1, fmt.Errorf("%w: no extension in %q", model.ErrUnsupportedFormat, path)
	}
	return FormatFromName(ext)
}

var filterNames = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"bicubic":    imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// FilterFromName resolves a resampling filter by name.
func FilterFromName(name string) (imaging.ResampleFilter, error) {
	f, ok := filterNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}
