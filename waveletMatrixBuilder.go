package watrix

import (
	"math"
	"math/bits"

	"github.com/AlexWan0/watrix/bitvector"
)

// WaveletMatrixBuilder builds a WaveletMatrix from an integer array.
// A user calls PushBack()s followed by Build().
type WaveletMatrixBuilder struct {
	vals []uint64
}

// NewBuilder returns an empty WaveletMatrixBuilder.
func NewBuilder() *WaveletMatrixBuilder {
	return &WaveletMatrixBuilder{vals: make([]uint64, 0)}
}

// PushBack appends val.
func (wmb *WaveletMatrixBuilder) PushBack(val uint64) {
	wmb.vals = append(wmb.vals, val)
}

// Build returns a WaveletMatrix whose bit width is the
// bit length of the largest value pushed.
func (wmb *WaveletMatrixBuilder) Build() *WaveletMatrix {
	return New(getBinaryLen(wmb.vals), wmb.vals)
}

// BuildWidth returns a WaveletMatrix with bitWidth levels.
func (wmb *WaveletMatrixBuilder) BuildWidth(bitWidth uint64) *WaveletMatrix {
	return New(bitWidth, wmb.vals)
}

// New builds a WaveletMatrix of bitWidth levels over vals.
// Every value must be smaller than 2^bitWidth.
// vals is not modified.
func New(bitWidth uint64, vals []uint64) *WaveletMatrix {
	if bitWidth > 64 {
		panic("watrix: bit width exceeds 64")
	}
	wm := &WaveletMatrix{
		num:  uint64(len(vals)),
		blen: bitWidth,
		dim:  getDim(vals),
	}
	for _, val := range vals {
		if !wm.inDomain(val) {
			panic("watrix: value exceeds bit width")
		}
	}

	per := bitvector.NumBlocks(wm.num)
	wm.arena = make([]bitvector.Block, int(bitWidth)*per)
	wm.layers = make([]layer, bitWidth)

	cur := make([]uint64, len(vals))
	copy(cur, vals)
	next := make([]uint64, len(vals))
	for depth := uint64(0); depth < bitWidth; depth++ {
		off := int(depth) * per
		b := bitvector.NewBuilder(wm.arena[off : off : off+per])
		zeros := filter(cur, bitWidth-depth-1, next, b)
		wm.layers[depth] = layer{bits: *b.Build(), zeroCount: zeros}
		cur, next = next, cur
	}
	return wm
}

// filter pushes bit `shift` of every value into b and stably
// partitions vals into next: zeros first, then ones.
// It returns the number of zeros.
func filter(vals []uint64, shift uint64, next []uint64, b *bitvector.Builder) uint64 {
	zeros := uint64(0)
	for _, val := range vals {
		if (val>>shift)&1 == 0 {
			zeros++
		}
	}
	zi, oi := uint64(0), zeros
	for _, val := range vals {
		bit := (val>>shift)&1 == 1
		b.PushBack(bit)
		if bit {
			next[oi] = val
			oi++
		} else {
			next[zi] = val
			zi++
		}
	}
	return zeros
}

// getDim returns max(vals)+1, or 0 for an empty array.
// It saturates at math.MaxUint64.
func getDim(vals []uint64) uint64 {
	dim := uint64(0)
	for _, val := range vals {
		if val == math.MaxUint64 {
			return math.MaxUint64
		}
		if val >= dim {
			dim = val + 1
		}
	}
	return dim
}

func getBinaryLen(vals []uint64) uint64 {
	maxVal := uint64(0)
	for _, val := range vals {
		if val > maxVal {
			maxVal = val
		}
	}
	return uint64(bits.Len64(maxVal))
}
