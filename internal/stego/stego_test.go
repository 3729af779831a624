package stego

import (
	"errors"
	"testing"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/bmp"
)

func TestConcealRevealRoundtrip(t *testing.T) {
	carrier, _ := bmp.New(32, 1, 0, 0, 32)
	for i := range carrier.Pixels {
		carrier.Pixels[i] = 0xAA // arbitrary non-zero high bits
	}

	shadow, _ := bmp.New(4, 1, 691, 3, 4)
	copy(shadow.Pixels, []byte{0x5A, 0x00, 0xFF, 0x81})

	hidden, err := Conceal(carrier, shadow)
	if err != nil {
		t.Fatal(err)
	}
	if hidden.Seed != shadow.Seed || hidden.ShadowIndex != shadow.ShadowIndex {
		t.Fatalf("hidden header slots = (%d,%d), want (%d,%d)", hidden.Seed, hidden.ShadowIndex, shadow.Seed, shadow.ShadowIndex)
	}

	revealed, err := Reveal(hidden, len(shadow.Pixels))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range revealed.Pixels {
		if b != shadow.Pixels[i] {
			t.Errorf("revealed[%d] = %#02x, want %#02x", i, b, shadow.Pixels[i])
		}
	}
}

// TestHighBitsPreserved checks spec.md §8's "LSB fidelity" property:
// the top 7 bits of every carrier byte survive concealment unchanged.
func TestHighBitsPreserved(t *testing.T) {
	carrier, _ := bmp.New(16, 1, 0, 0, 16)
	for i := range carrier.Pixels {
		carrier.Pixels[i] = byte(i*37 + 13)
	}
	shadow, _ := bmp.New(2, 1, 0, 1, 2)
	copy(shadow.Pixels, []byte{0xF0, 0x0F})

	hidden, err := Conceal(carrier, shadow)
	if err != nil {
		t.Fatal(err)
	}
	for i := range carrier.Pixels {
		if carrier.Pixels[i]&0xFE != hidden.Pixels[i]&0xFE {
			t.Fatalf("byte %d: high 7 bits changed: %#02x -> %#02x", i, carrier.Pixels[i], hidden.Pixels[i])
		}
	}
}

func TestConcealRejectsInsufficientCapacity(t *testing.T) {
	carrier, _ := bmp.New(4, 1, 0, 0, 4) // only 4 bytes, need 8 per shadow byte
	shadow, _ := bmp.New(1, 1, 0, 1, 1)
	_, err := Conceal(carrier, shadow)
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("got %v, want ErrCapacityOverflow", err)
	}
}

func TestRevealRejectsInsufficientCapacity(t *testing.T) {
	carrier, _ := bmp.New(4, 1, 0, 1, 4)
	_, err := Reveal(carrier, 2) // needs 16 bytes
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("got %v, want ErrCapacityOverflow", err)
	}
}

func TestMSBFirstOrdering(t *testing.T) {
	carrier, _ := bmp.New(8, 1, 0, 0, 8)
	shadow, _ := bmp.New(1, 1, 0, 1, 1)
	shadow.Pixels[0] = 0b10110010

	hidden, _ := Conceal(carrier, shadow)
	for j, want := range []byte{1, 0, 1, 1, 0, 0, 1, 0} {
		if hidden.Pixels[j]&1 != want {
			t.Errorf("bit %d = %d, want %d", j, hidden.Pixels[j]&1, want)
		}
	}
}
