package optimize

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"
)

var _ Encoding = (*Encoder)(nil)

// ErrMissingEncoder is returned by [*Encoder.Encode] if no encoder is
// registered for the given content-type.
var ErrMissingEncoder = errors.New("missing encoder for this content-type")

// DefaultEncoder is an [*Encoder] with support for encoding "image/jpeg",
// "image/png", and "image/gif" content-types.
//
//   - JPEGs are encoded using [jpeg.Encode] at the requested quality.
//   - PNGs are encoded using [png.Encode]; PNG is lossless, quality is ignored.
//   - GIFs are encoded using [gif.Encode] with default options.
var DefaultEncoder *Encoder

func init() {
	DefaultEncoder = &Encoder{}

	DefaultEncoder.Register("image/jpeg", func(w io.Writer, img image.Image, quality int) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})

	DefaultEncoder.Register("image/png", func(w io.Writer, img image.Image, _ int) error {
		return png.Encode(w, img)
	})

	DefaultEncoder.Register("image/gif", func(w io.Writer, img image.Image, _ int) error {
		return gif.Encode(w, img, nil)
	})
}

// An Encoding encodes images of different content-types at a given quality.
// Quality is a percentage in [1,100]; encoders of lossless formats ignore it.
type Encoding interface {
	Encode(w io.Writer, contentType string, img image.Image, quality int) error
}

// Encoder encodes images of different content-types. It is safe for concurrent
// use. The zero-value Encoder is ready-to-use.
//
//	var enc Encoder
//	enc.Register("image/png", func(w io.Writer, img image.Image, _ int) error {
//		return png.Encode(w, img)
//	})
type Encoder struct {
	mux      sync.RWMutex
	once     sync.Once
	encoders map[string]func(io.Writer, image.Image, int) error
}

// EncoderFunc is a function that can be used as an [Encoding].
type EncoderFunc func(io.Writer, string, image.Image, int) error

// Encode implements [Encoding].
func (encode EncoderFunc) Encode(w io.Writer, contentType string, img image.Image, quality int) error {
	return encode(w, contentType, img, quality)
}

// Register registers an encoder function for the given content-type.
func (enc *Encoder) Register(contentType string, encoder func(io.Writer, image.Image, int) error) {
	enc.init()
	enc.mux.Lock()
	defer enc.mux.Unlock()
	enc.encoders[contentType] = encoder
}

// Encode encodes the provided [image.Image] at the given quality and writes
// the result to `w`, using the registered encoder for the given content-type.
// If no encoder was registered for this content-type, an error that satisfies
// errors.Is(err, ErrMissingEncoder) is returned.
func (enc *Encoder) Encode(w io.Writer, contentType string, img image.Image, quality int) error {
	enc.init()
	enc.mux.RLock()
	defer enc.mux.RUnlock()
	encode, ok := enc.encoders[contentType]
	if !ok {
		return fmt.Errorf("%q content-type: %w", contentType, ErrMissingEncoder)
	}
	return encode(w, img, quality)
}

func (enc *Encoder) init() {
	enc.once.Do(func() { enc.encoders = make(map[string]func(io.Writer, image.Image, int) error) })
}
