// Package imaging prepares uploads for the model and draws analysis results
// back onto the photo.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// SecondPassSide and SecondPassQuality apply when the first pass still
	// leaves the image above the threshold.
	SecondPassSide    = 1600
	SecondPassQuality = 70
)

var (
	// ErrUnsupported is returned for formats the compressor cannot decode.
	ErrUnsupported = errors.New("imaging: unsupported image format")
	// ErrTooManyPixels is returned when an image header declares more
	// pixels than the caller allows.
	ErrTooManyPixels = errors.New("imaging: image dimensions exceed the pixel limit")
)

type compressionTier struct {
	above   int64
	maxSide int
	quality int
}

// Larger uploads are shrunk harder. Checked in order.
var compressionTiers = []compressionTier{
	{above: 5 << 20, maxSide: 1600, quality: 70},
	{above: 2 << 20, maxSide: 1800, quality: 75},
	{above: 0, maxSide: 1920, quality: 80},
}

// Result is a possibly re-encoded image. Width and Height are only set
// when Compressed; SourceWidth and SourceHeight are the decoded input size.
type Result struct {
	Data         []byte
	MIME         string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	Compressed   bool
}

// Resized reports whether the output dimensions differ from the input.
func (r Result) Resized() bool {
	return r.Compressed && (r.Width != r.SourceWidth || r.Height != r.SourceHeight)
}

// CheckDimensions reads only the image header and fails with
// ErrTooManyPixels when width*height exceeds maxPixels. A non-positive
// maxPixels disables the check.
func CheckDimensions(data []byte, maxPixels int64) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return cfg, fmt.Errorf("%w: %dx%d, limit %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, nil
}

// Decode decodes data once its header passes CheckDimensions.
func Decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if _, err := CheckDimensions(data, maxPixels); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, format, nil
}

// Compress downsizes and re-encodes images larger than threshold bytes.
// Smaller inputs are returned untouched. PNG stays PNG; JPEG and WEBP are
// written as JPEG. Images declaring more than maxPixels are not decoded.
func Compress(data []byte, mimeType string, threshold, maxPixels int64) (Result, error) {
	size := int64(len(data))
	if size <= threshold {
		return Result{Data: data, MIME: mimeType}, nil
	}

	src, format, err := Decode(data, maxPixels)
	if err != nil {
		return Result{}, err
	}

	t := tierFor(size)
	out, err := encodeScaled(src, format, t.maxSide, t.quality)
	if err != nil {
		return Result{}, err
	}
	if int64(len(out.Data)) > threshold && (t.maxSide != SecondPassSide || t.quality != SecondPassQuality) {
		out, err = encodeScaled(src, format, SecondPassSide, SecondPassQuality)
		if err != nil {
			return Result{}, err
		}
	}
	out.Compressed = true
	return out, nil
}

func tierFor(size int64) compressionTier {
	for _, t := range compressionTiers {
		if size > t.above {
			return t
		}
	}
	return compressionTiers[len(compressionTiers)-1]
}

func encodeScaled(src image.Image, format string, maxSide, quality int) (Result, error) {
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxSide, maxSide)

	img := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	out := Result{Width: w, Height: h, SourceWidth: b.Dx(), SourceHeight: b.Dy()}
	if format == "png" {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return Result{}, fmt.Errorf("encode png: %w", err)
		}
		out.MIME = "image/png"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return Result{}, fmt.Errorf("encode jpeg: %w", err)
		}
		out.MIME = "image/jpeg"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// fitWithin scales w x h down to fit maxW x maxH, keeping the aspect ratio.
// It never scales up.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*ratio+0.5))
	nh := max(1, int(float64(h)*ratio+0.5))
	return nw, nh
}

// DetectMIME returns the declared media type without parameters, or the
// sniffed type when the declaration is missing or generic.
func DetectMIME(data []byte, declared string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		mt = strings.ToLower(mt)
		if mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(data).String())
	return mt
}
