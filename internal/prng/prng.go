// Package prng implements the deterministic byte generator used to
// whiten secret images before sharing. It is a 48-bit linear
// congruential generator equivalent to the multiplier/increment pair
// used by the widely deployed Lehmer/Knuth construction (the same
// constants as java.util.Random), reproduced here bit-for-bit: shadows
// produced by one implementation of this scheme must interoperate
// with any other, so the byte stream it produces is part of the wire
// contract, not an implementation detail.
package prng

const (
	multiplier = 0x5DEECE66D // 25214903917
	increment  = 0xB         // 11
	mask48     = (1 << 48) - 1
)

// State is a PRNG instance holding the 48-bit generator state. The
// zero value is not seeded; use New.
//
// Each State is independent: there is no hidden process-global
// generator, so two States seeded identically always produce
// identical, order-independent byte streams.
type State struct {
	s uint64
}

// New returns a State seeded with s, ready to produce bytes via
// NextByte.
func New(seed uint16) *State {
	st := &State{}
	st.Seed(seed)
	return st
}

// Seed resets the generator state from seed, discarding any prior
// output history.
func (st *State) Seed(seed uint16) {
	st.s = (uint64(seed) ^ multiplier) & mask48
}

// NextByte advances the generator and returns the next output byte.
func (st *State) NextByte() byte {
	st.s = (st.s*multiplier + increment) & mask48
	n := st.s >> 17 // 31-bit quantity
	return byte((256 * n) >> 31)
}

// Mask returns n freshly generated bytes, seeding a new generator from
// seed. It does not mutate any shared state and is safe to call
// concurrently from independent goroutines.
func Mask(seed uint16, n int) []byte {
	st := New(seed)
	out := make([]byte, n)
	for i := range out {
		out[i] = st.NextByte()
	}
	return out
}

// XOR writes dst[i] = src[i] ^ mask(seed, len(src))[i] into dst, which
// may alias src. Because XOR is its own inverse, calling XOR twice
// with the same seed restores the original bytes.
func XOR(dst, src []byte, seed uint16) {
	st := New(seed)
	for i, b := range src {
		dst[i] = b ^ st.NextByte()
	}
}
