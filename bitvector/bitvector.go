// Package bitvector provides an immutable bit vector answering
// rank and select queries over 64-bit blocks.
package bitvector

import (
	"math/bits"
	"sort"
)

const (
	logWordSize = 6
	wordSize    = 1 << logWordSize
	wordMask    = wordSize - 1
)

// Block is one word of packed bits together with
// the number of set bits in all preceding blocks.
type Block struct {
	Bits uint64
	Sum  uint64
}

// BitVector is a static sequence of bits.
// It always holds Len()/64+1 blocks so that Rank1(Len()) is addressable.
type BitVector struct {
	blocks []Block
	n      uint64
	ones   uint64
}

// NumBlocks returns the number of blocks a vector of n bits occupies.
func NumBlocks(n uint64) int {
	return int(n>>logWordSize) + 1
}

// NumWords returns the number of words holding n bits.
func NumWords(n uint64) uint64 {
	w := n >> logWordSize
	if n&wordMask != 0 {
		w++
	}
	return w
}

// New builds a BitVector from src.
func New(src []bool) *BitVector {
	b := NewBuilder(make([]Block, 0, NumBlocks(uint64(len(src)))))
	for _, bit := range src {
		b.PushBack(bit)
	}
	return b.Build()
}

// FromWords builds a BitVector of n bits from raw words, LSB first.
// Bits of words at or beyond n are ignored.
func FromWords(words []uint64, n uint64) *BitVector {
	return FromWordsInto(make([]Block, NumBlocks(n)), words, n)
}

// FromWordsInto is FromWords writing the blocks into dst,
// which must hold at least NumBlocks(n) blocks.
func FromWordsInto(dst []Block, words []uint64, n uint64) *BitVector {
	if len(dst) < NumBlocks(n) {
		panic("bitvector: destination too small")
	}
	blocks := dst[:NumBlocks(n)]
	full := n >> logWordSize
	if uint64(len(words)) < NumWords(n) {
		panic("bitvector: not enough words for length")
	}
	sum := uint64(0)
	for i := uint64(0); i < full; i++ {
		blocks[i] = Block{Bits: words[i], Sum: sum}
		sum += uint64(bits.OnesCount64(words[i]))
	}
	last := uint64(0)
	if rem := n & wordMask; rem != 0 {
		last = words[full] & (1<<rem - 1)
	}
	blocks[full] = Block{Bits: last, Sum: sum}
	sum += uint64(bits.OnesCount64(last))
	return &BitVector{blocks: blocks, n: n, ones: sum}
}

// Len returns the number of bits.
func (bv *BitVector) Len() uint64 {
	return bv.n
}

// Ones returns the number of set bits.
func (bv *BitVector) Ones() uint64 {
	return bv.ones
}

// Zeros returns the number of unset bits.
func (bv *BitVector) Zeros() uint64 {
	return bv.n - bv.ones
}

// Blocks returns the underlying blocks. The caller must not modify them.
func (bv *BitVector) Blocks() []Block {
	return bv.blocks
}

// Access returns the bit at i.
func (bv *BitVector) Access(i uint64) bool {
	if i >= bv.n {
		panic("bitvector: index out of range")
	}
	return bv.blocks[i>>logWordSize].Bits&(1<<(i&wordMask)) != 0
}

// Rank1 returns the number of set bits in [0, i).
func (bv *BitVector) Rank1(i uint64) uint64 {
	if i > bv.n {
		panic("bitvector: rank position out of range")
	}
	blk := bv.blocks[i>>logWordSize]
	return blk.Sum + uint64(bits.OnesCount64(blk.Bits&(1<<(i&wordMask)-1)))
}

// Rank0 returns the number of unset bits in [0, i).
func (bv *BitVector) Rank0(i uint64) uint64 {
	return i - bv.Rank1(i)
}

// Rank returns Rank1(i) if bit is set, Rank0(i) otherwise.
func (bv *BitVector) Rank(i uint64, bit bool) uint64 {
	if bit {
		return bv.Rank1(i)
	}
	return bv.Rank0(i)
}

// Select1 returns the position of the (k+1)-th set bit.
func (bv *BitVector) Select1(k uint64) uint64 {
	if k >= bv.ones {
		panic("bitvector: select1 rank exceeds number of ones")
	}
	l := sort.Search(len(bv.blocks), func(i int) bool {
		return bv.blocks[i].Sum > k
	}) - 1
	blk := bv.blocks[l]
	return uint64(l)<<logWordSize + selectInWord(blk.Bits, k-blk.Sum)
}

// Select0 returns the position of the (k+1)-th unset bit.
func (bv *BitVector) Select0(k uint64) uint64 {
	if k >= bv.n-bv.ones {
		panic("bitvector: select0 rank exceeds number of zeros")
	}
	l := sort.Search(len(bv.blocks), func(i int) bool {
		return uint64(i)<<logWordSize-bv.blocks[i].Sum > k
	}) - 1
	blk := bv.blocks[l]
	zerosBefore := uint64(l)<<logWordSize - blk.Sum
	return uint64(l)<<logWordSize + selectInWord(^blk.Bits, k-zerosBefore)
}

// Select returns Select1(k) if bit is set, Select0(k) otherwise.
func (bv *BitVector) Select(k uint64, bit bool) uint64 {
	if bit {
		return bv.Select1(k)
	}
	return bv.Select0(k)
}

// AllocSize returns the number of bytes held by the blocks.
func (bv *BitVector) AllocSize() int {
	return len(bv.blocks) * 16
}
