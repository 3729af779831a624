// Package stego implements the LSB steganographic pairing that hides
// a shadow image inside a carrier bitmap and recovers it again: each
// shadow pixel byte is spread one bit per carrier pixel's least
// significant bit, MSB first.
//
// The Conceal/Reveal naming and error-wrapping style follow
// zanicar/stegano's PNG steganography implementation in the reference
// corpus, simplified to this scheme's fixed one-bit-per-pixel layout
// (the source format there spreads data variably across an RGB
// channel capacity; this scheme's carrier is an 8-bit indexed bitmap
// with one encodable bit per pixel, so no header byte negotiating a
// variable step is needed — capacity is simply 8x the shadow's pixel
// count).
package stego

import (
	"errors"
	"fmt"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/bmp"
)

var (
	ErrCapacityOverflow = errors.New("stego: carrier has insufficient pixel capacity")
	ErrBadArgument      = errors.New("stego: bad argument")
)

// Capacity returns the number of shadow-pixel bytes that a carrier
// with carrierPixelBytes raw pixel bytes can hold (8 carrier bytes
// per shadow byte, one bit each).
func Capacity(carrierPixelBytes int) int {
	return carrierPixelBytes / 8
}

// Conceal hides shadow's pixels (and its seed/shadow-index header
// fields) inside carrier, returning a new Bitmap whose pixel buffer is
// carrier's with the low bit of each byte replaced. carrier is not
// mutated; its palette and dimensions are preserved as-is.
func Conceal(carrier *bmp.Bitmap, shadow *bmp.Bitmap) (*bmp.Bitmap, error) {
	if carrier == nil || shadow == nil {
		return nil, fmt.Errorf("stego.Conceal: %w: nil bitmap", ErrBadArgument)
	}
	need := len(shadow.Pixels) * 8
	if len(carrier.Pixels) < need {
		return nil, fmt.Errorf("stego.Conceal: %w: need %d carrier pixel bytes, have %d",
			ErrCapacityOverflow, need, len(carrier.Pixels))
	}

	out := &bmp.Bitmap{
		Width:       carrier.Width,
		Height:      carrier.Height,
		Seed:        shadow.Seed,
		ShadowIndex: shadow.ShadowIndex,
		Palette:     carrier.Palette,
		Pixels:      make([]byte, len(carrier.Pixels)),
	}
	copy(out.Pixels, carrier.Pixels)

	for i, b := range shadow.Pixels {
		for j := 0; j < 8; j++ {
			bit := (b >> (7 - j)) & 1
			out.Pixels[i*8+j] = (out.Pixels[i*8+j] &^ 1) | bit
		}
	}
	return out, nil
}

// Reveal extracts a hidden shadow of shadowPixelCount pixels from
// carrier's LSBs, MSB first, pairing it with carrier's seed and
// shadow-index header fields.
func Reveal(carrier *bmp.Bitmap, shadowPixelCount int) (*bmp.Bitmap, error) {
	if carrier == nil {
		return nil, fmt.Errorf("stego.Reveal: %w: nil bitmap", ErrBadArgument)
	}
	need := shadowPixelCount * 8
	if len(carrier.Pixels) < need {
		return nil, fmt.Errorf("stego.Reveal: %w: need %d carrier pixel bytes, have %d",
			ErrCapacityOverflow, need, len(carrier.Pixels))
	}

	pixels := make([]byte, shadowPixelCount)
	for i := range pixels {
		var b byte
		for j := 0; j < 8; j++ {
			bit := carrier.Pixels[i*8+j] & 1
			b = (b << 1) | bit
		}
		pixels[i] = b
	}

	return &bmp.Bitmap{
		Seed:        carrier.Seed,
		ShadowIndex: carrier.ShadowIndex,
		Pixels:      pixels,
	}, nil
}
