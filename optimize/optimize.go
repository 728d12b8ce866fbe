// Package optimize re-encodes images to fit dimension and byte budgets.
package optimize

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"math"

	// Decoders for the accepted input formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/veligo/galleria/image"
)

// Default optimization constraints.
const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1920
	DefaultQuality   = 0.8
	DefaultFormat    = "image/jpeg"
	DefaultMaxBytes  = 500 << 10 // 500 KiB

	// MinQuality is the floor for the reduced-quality retry pass.
	MinQuality = 0.3
)

// Options are the target constraints of an optimization.
type Options struct {
	// MaxWidth and MaxHeight bound the output dimensions. Images are scaled
	// down preserving aspect ratio; they are never upscaled.
	MaxWidth  int
	MaxHeight int

	// Quality is the encoding quality in (0,1].
	Quality float64

	// Format is the output content-type ("image/jpeg", "image/png", ...).
	Format string

	// MaxBytes is the byte budget of the encoded output. If the first pass
	// exceeds it, a single retry is encoded at max(0.3, Quality*0.7). The
	// result of the retry is accepted unconditionally.
	MaxBytes int
}

func (opts Options) normalized() Options {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 1 {
		opts.Quality = DefaultQuality
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return opts
}

// Result is the outcome of an optimization.
type Result struct {
	// Data is the encoded output image.
	Data []byte

	// MIME is the content-type of Data.
	MIME string

	// Dimensions are the output dimensions.
	Dimensions image.Dimensions

	// Quality is the quality the returned Data was encoded at.
	Quality float64

	// Retried reports whether the reduced-quality second pass was taken.
	Retried bool
}

// Optimizer re-encodes raw images to fit the configured constraints.
type Optimizer struct {
	encoding Encoding
	opts     Options
}

// New returns an [*Optimizer] that encodes with enc. If enc is nil,
// [DefaultEncoder] is used.
func New(enc Encoding, opts Options) *Optimizer {
	if enc == nil {
		enc = DefaultEncoder
	}
	return &Optimizer{encoding: enc, opts: opts.normalized()}
}

// Optimize decodes the raw image, scales it down to fit the configured
// maximum dimensions (never up), and encodes it in the configured format.
// If the first pass exceeds the byte budget, exactly one retry is encoded at
// reduced quality and that result is returned regardless of its size.
//
// The source data is never mutated. A decode or encode failure is a per-file
// failure; callers processing a batch must not treat it as fatal.
func (o *Optimizer) Optimize(ctx context.Context, data []byte) (Result, error) {
	src, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	scale := math.Min(1, math.Min(
		float64(o.opts.MaxWidth)/float64(bounds.Dx()),
		float64(o.opts.MaxHeight)/float64(bounds.Dy()),
	))

	out := src
	if scale < 1 {
		out = imaging.Fit(src, o.opts.MaxWidth, o.opts.MaxHeight, imaging.Lanczos)
	}

	dims := image.Dimensions{out.Bounds().Dx(), out.Bounds().Dy()}

	encoded, err := o.encode(out, o.opts.Quality)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Data:       encoded,
		MIME:       o.opts.Format,
		Dimensions: dims,
		Quality:    o.opts.Quality,
	}

	if len(encoded) <= o.opts.MaxBytes {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Over budget: one retry at reduced quality, accepted unconditionally.
	quality := math.Max(MinQuality, o.opts.Quality*0.7)

	encoded, err = o.encode(out, quality)
	if err != nil {
		return Result{}, err
	}

	result.Data = encoded
	result.Quality = quality
	result.Retried = true

	return result, nil
}

func (o *Optimizer) encode(img stdimage.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.encoding.Encode(&buf, o.opts.Format, img, int(math.Round(quality*100))); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
