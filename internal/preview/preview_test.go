package preview

import (
	"bytes"
	"testing"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/bmp"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestWriteProducesValidPNGHeader(t *testing.T) {
	b, err := bmp.New(16, 16, 0, 0, int(bmp.PixelArraySize(16, 16)))
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Pixels {
		b.Pixels[i] = byte(i)
	}

	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("output does not start with the PNG magic bytes")
	}
}

func TestWriteRejectsNil(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err == nil {
		t.Fatal("expected error for nil bitmap")
	}
}
