package bitvector

import "math/bits"

// Builder packs bits into blocks one at a time.
// A user calls PushBack()s followed by Build().
type Builder struct {
	blocks []Block
	cur    uint64
	n      uint64
	ones   uint64
}

// NewBuilder returns a Builder appending blocks to dst.
// Passing dst[:0:NumBlocks(n)] of a larger slice keeps
// the resulting vector inside that slice.
func NewBuilder(dst []Block) *Builder {
	return &Builder{blocks: dst[:0]}
}

// PushBack appends bit.
func (b *Builder) PushBack(bit bool) {
	if bit {
		b.cur |= 1 << (b.n & wordMask)
	}
	b.n++
	if b.n&wordMask == 0 {
		b.flush()
	}
}

func (b *Builder) flush() {
	b.blocks = append(b.blocks, Block{Bits: b.cur, Sum: b.ones})
	b.ones += uint64(bits.OnesCount64(b.cur))
	b.cur = 0
}

// Len returns the number of bits pushed so far.
func (b *Builder) Len() uint64 {
	return b.n
}

// Build writes the trailing block and returns the vector.
// The Builder must not be used afterwards.
func (b *Builder) Build() *BitVector {
	b.flush()
	bv := &BitVector{blocks: b.blocks, n: b.n, ones: b.ones}
	b.blocks = nil
	return bv
}
