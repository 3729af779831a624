// Package preview renders small PNG thumbnails of the bitmaps this
// tool processes, for a human to sanity-check a distribute or recover
// run without opening a full-size image. It is a diagnostic
// convenience (see SPEC_FULL.md §C); nothing in the core sharing or
// stego pipeline depends on it.
//
// It reuses golang.org/x/image/draw's bilinear scaler exactly the way
// the reference corpus's lib/handsum.Encode does when it downsamples
// an arbitrary source image to its fixed 16x16 working size.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp" // registers BMP with image.Decode, for InspectFile
	_ "image/gif"
	_ "image/jpeg"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/bmp"
)

// MaxDimension bounds the longer side of a rendered thumbnail.
const MaxDimension = 128

// Write renders b as a greyscale PNG thumbnail, scaled so its longer
// side is at most MaxDimension, and writes it to w.
func Write(w io.Writer, b *bmp.Bitmap) error {
	if b == nil {
		return fmt.Errorf("preview.Write: nil bitmap")
	}
	src := bitmapToGray(b)

	bounds := src.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	scale := 1.0
	if dx > dy && dx > MaxDimension {
		scale = float64(MaxDimension) / float64(dx)
	} else if dy >= dx && dy > MaxDimension {
		scale = float64(MaxDimension) / float64(dy)
	}

	dstW := max(1, int(float64(dx)*scale))
	dstH := max(1, int(float64(dy)*scale))
	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	return png.Encode(w, dst)
}

// InspectFile reads an arbitrary image file (BMP, GIF, JPEG or PNG) at
// path using the standard image package's format sniffing, and writes
// a scaled-down PNG thumbnail to w. Unlike Write, it does not go
// through this scheme's bit-exact bmp codec at all: it exists so a
// user can eyeball a directory of candidate carrier images before
// pointing --dir at it, independent of whether those files would
// actually decode as this scheme's narrow BMP variant.
func InspectFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("preview.InspectFile: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("preview.InspectFile: %w", err)
	}

	bounds := src.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	scale := 1.0
	if dx > dy && dx > MaxDimension {
		scale = float64(MaxDimension) / float64(dx)
	} else if dy >= dx && dy > MaxDimension {
		scale = float64(MaxDimension) / float64(dy)
	}
	dstW := max(1, int(float64(dx)*scale))
	dstH := max(1, int(float64(dy)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return png.Encode(w, dst)
}

// bitmapToGray reinterprets a Bitmap's raw pixel bytes (row-padded, as
// they sit on disk) as an image.Gray, one indexed byte per pixel
// interpreted directly as a grey level: this scheme's bitmaps always
// carry the standard greyscale palette, so the index IS the grey
// value.
func bitmapToGray(b *bmp.Bitmap) *image.Gray {
	width := int(b.Width)
	height := int(b.AbsHeight())
	stride := ((8*int(b.Width) + 31) / 32) * 4

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		rowStart := y * stride
		if rowStart+width > len(b.Pixels) {
			break
		}
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: b.Pixels[rowStart+x]})
		}
	}
	return img
}
