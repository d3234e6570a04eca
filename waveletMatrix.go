// Package watrix provides a wavelet matrix
// supporting many range-query problems, including rank/select,
// range quantile, range frequency and prefix search for integer arrays.
package watrix

import (
	"github.com/AlexWan0/watrix/bitvector"
)

// Range represents a range [Bpos, Epos)
// only valid for Bpos <= Epos
type Range struct {
	Bpos uint64
	Epos uint64
}

const (
	// OpEqual is used in RangedRankOp()
	OpEqual = iota
	// OpLessThan is used in RangedRankOp()
	OpLessThan
	// OpMoreThan is used in RangedRankOp()
	OpMoreThan
	// OpMax is upper boundary for OpXXXX constants
	OpMax
)

type layer struct {
	bits      bitvector.BitVector
	zeroCount uint64 // == bits.Rank0(num)
}

// WaveletMatrix is the core of the library.
// It is immutable once built and safe for concurrent readers.
type WaveletMatrix struct {
	arena  []bitvector.Block // blocks of all layers, NumBlocks(num) per layer
	layers []layer           // layers[0] holds the most significant bit
	dim    uint64
	num    uint64
	blen   uint64 // =len(layers)
}

// Num return the number of values in T
func (wm *WaveletMatrix) Num() uint64 {
	return wm.num
}

// Dim returns (max. of T[0...Num) + 1)
func (wm *WaveletMatrix) Dim() uint64 {
	return wm.dim
}

// BitWidth returns the number of levels.
func (wm *WaveletMatrix) BitWidth() uint64 {
	return wm.blen
}

// ZeroCount returns the number of zero bits at the level for bit position
// BitWidth()-depth-1.
func (wm *WaveletMatrix) ZeroCount(depth uint64) uint64 {
	return wm.layers[depth].zeroCount
}

// AllocSize returns the number of bytes held by the level blocks.
func (wm *WaveletMatrix) AllocSize() int {
	return len(wm.arena) * 16
}

// Access returns T[pos]
func (wm *WaveletMatrix) Access(pos uint64) uint64 {
	if pos >= wm.num {
		panic("watrix: index out of range")
	}
	val := uint64(0)
	for depth := range wm.layers {
		val <<= 1
		l := &wm.layers[depth]
		if !l.bits.Access(pos) {
			pos = l.bits.Rank0(pos)
		} else {
			val |= 1
			pos = l.zeroCount + l.bits.Rank1(pos)
		}
	}
	return val
}

// Lookup is an alias of Access.
func (wm *WaveletMatrix) Lookup(pos uint64) uint64 {
	return wm.Access(pos)
}

// Rank returns the number of c (== val) in T[ranze.Bpos, ranze.Epos)
func (wm *WaveletMatrix) Rank(val uint64, ranze Range) uint64 {
	return wm.RangedRankOp(ranze, val, OpEqual)
}

// RankLessThan returns the number of c (< val) in T[0...pos)
func (wm *WaveletMatrix) RankLessThan(pos uint64, val uint64) uint64 {
	return wm.RangedRankOp(Range{0, pos}, val, OpLessThan)
}

// RankMoreThan returns the number of c (> val) in T[0...pos)
func (wm *WaveletMatrix) RankMoreThan(pos uint64, val uint64) uint64 {
	return wm.RangedRankOp(Range{0, pos}, val, OpMoreThan)
}

// RangedRankOp returns the number of c that satisfies 'c op val'
// in T[ranze.Bpos, ranze.Epos).
// The op should be one of {OpEqual, OpLessThan, OpMoreThan}.
func (wm *WaveletMatrix) RangedRankOp(ranze Range, val uint64, op int) uint64 {
	wm.checkRange(ranze)
	if !wm.inDomain(val) {
		if op == OpLessThan {
			return ranze.Epos - ranze.Bpos
		}
		return 0
	}
	rankLessThan := uint64(0)
	rankMoreThan := uint64(0)
	for depth := uint64(0); depth < wm.blen; depth++ {
		bit := getMSB(val, depth, wm.blen)
		l := &wm.layers[depth]
		if bit {
			if op == OpLessThan {
				rankLessThan += l.bits.Rank0(ranze.Epos) - l.bits.Rank0(ranze.Bpos)
			}
			ranze.Bpos = l.zeroCount + l.bits.Rank1(ranze.Bpos)
			ranze.Epos = l.zeroCount + l.bits.Rank1(ranze.Epos)
		} else {
			if op == OpMoreThan {
				rankMoreThan += l.bits.Rank1(ranze.Epos) - l.bits.Rank1(ranze.Bpos)
			}
			ranze.Bpos = l.bits.Rank0(ranze.Bpos)
			ranze.Epos = l.bits.Rank0(ranze.Epos)
		}
	}
	switch op {
	case OpEqual:
		return ranze.Epos - ranze.Bpos
	case OpLessThan:
		return rankLessThan
	case OpMoreThan:
		return rankMoreThan
	default:
		return 0
	}
}

// RangeFreq searches T[ranze.Bpos, ranze.Epos) and
// returns the number of c that falls within valueRange
// i.e. [valueRange.Bpos, valueRange.Epos).
// Bounds at or above 2^BitWidth() count every value.
func (wm *WaveletMatrix) RangeFreq(ranze Range, valueRange Range) uint64 {
	if valueRange.Bpos > valueRange.Epos {
		panic("watrix: invalid value range")
	}
	end := wm.RangedRankOp(ranze, valueRange.Epos, OpLessThan)
	beg := wm.RangedRankOp(ranze, valueRange.Bpos, OpLessThan)
	return end - beg
}

// RangedRankRange is an alias of RangeFreq.
func (wm *WaveletMatrix) RangedRankRange(ranze Range, valueRange Range) uint64 {
	return wm.RangeFreq(ranze, valueRange)
}

func (wm *WaveletMatrix) rangedRankIgnoreLSBsHelper(ranze Range, val uint64, ignoreBits uint64) Range {
	for depth := uint64(0); depth+ignoreBits < wm.blen; depth++ {
		bit := getMSB(val, depth, wm.blen)
		l := &wm.layers[depth]
		if bit {
			ranze.Bpos = l.zeroCount + l.bits.Rank1(ranze.Bpos)
			ranze.Epos = l.zeroCount + l.bits.Rank1(ranze.Epos)
		} else {
			ranze.Bpos = l.bits.Rank0(ranze.Bpos)
			ranze.Epos = l.bits.Rank0(ranze.Epos)
		}
	}
	return ranze
}

// RangedRankIgnoreLSBs searches T[ranze.Bpos, ranze.Epos) and
// returns the number of c that matches the val.
//
// If ignoreBits > 0, ignoreBits-bit portion from LSB are not considered
// for match.
// This behavior is useful for IP address prefix search such as 192.168.10.0/24
// (ignoreBits in this case, is 8).
func (wm *WaveletMatrix) RangedRankIgnoreLSBs(ranze Range, val, ignoreBits uint64) uint64 {
	wm.checkRange(ranze)
	if !wm.prefixInDomain(val, ignoreBits) {
		return 0
	}
	r := wm.rangedRankIgnoreLSBsHelper(ranze, val, ignoreBits)
	return r.Epos - r.Bpos
}

// selectUp maps pos at the level below depth back to T,
// climbing through layers[depth-1] ... layers[0].
func (wm *WaveletMatrix) selectUp(pos uint64, depth uint64) uint64 {
	for ; depth > 0; depth-- {
		l := &wm.layers[depth-1]
		if pos < l.zeroCount {
			pos = l.bits.Select0(pos)
		} else {
			pos = l.bits.Select1(pos - l.zeroCount)
		}
	}
	return pos
}

// RangedSelectIgnoreLSBs searches T[ranze.Bpos, ranze.Epos) and
// returns the position of (rank+1)'th c that matches the val.
// If not found, returns ranze.Epos.
//
// If ignoreBits > 0, ignoreBits-bit portion from LSB are not considered
// for match.
func (wm *WaveletMatrix) RangedSelectIgnoreLSBs(ranze Range, val, rank, ignoreBits uint64) uint64 {
	wm.checkRange(ranze)
	if !wm.prefixInDomain(val, ignoreBits) {
		return ranze.Epos
	}
	r := wm.rangedRankIgnoreLSBsHelper(ranze, val, ignoreBits)
	pos := r.Bpos + rank
	if r.Epos <= pos {
		return ranze.Epos
	}
	depth := uint64(0)
	if ignoreBits < wm.blen {
		depth = wm.blen - ignoreBits
	}
	return wm.selectUp(pos, depth)
}

// RangedSelect returns the position of (rank+1)'th val in T[ranze.Bpos, ranze.Epos).
// If not found, returns ranze.Epos.
func (wm *WaveletMatrix) RangedSelect(ranze Range, val, rank uint64) uint64 {
	return wm.RangedSelectIgnoreLSBs(ranze, val, rank, 0)
}

// Select returns the position of (rank+1)-th val in T.
// It panics if val occurs rank times or fewer.
func (wm *WaveletMatrix) Select(val uint64, rank uint64) uint64 {
	if !wm.inDomain(val) {
		panic("watrix: select of a value that does not occur")
	}
	r := wm.rangedRankIgnoreLSBsHelper(Range{0, wm.num}, val, 0)
	pos := r.Bpos + rank
	if r.Epos <= pos {
		panic("watrix: select rank exceeds number of occurrences")
	}
	return wm.selectUp(pos, wm.blen)
}

// LookupAndRank returns T[pos] and the number of T[pos] in T[0...pos)
// Faster than Access followed by Rank
func (wm *WaveletMatrix) LookupAndRank(pos uint64) (uint64, uint64) {
	if pos >= wm.num {
		panic("watrix: index out of range")
	}
	val := uint64(0)
	bpos := uint64(0)
	epos := pos
	for depth := range wm.layers {
		l := &wm.layers[depth]
		bit := l.bits.Access(epos)
		bpos = l.bits.Rank(bpos, bit)
		epos = l.bits.Rank(epos, bit)
		val <<= 1
		if bit {
			bpos += l.zeroCount
			epos += l.zeroCount
			val |= 1
		}
	}
	return val, epos - bpos
}

// Quantile returns (k+1)th smallest value in T[ranze.Bpos, ranze.Epos)
func (wm *WaveletMatrix) Quantile(ranze Range, k uint64) uint64 {
	wm.checkRange(ranze)
	if k >= ranze.Epos-ranze.Bpos {
		panic("watrix: quantile k out of range")
	}
	val := uint64(0)
	bpos, epos := ranze.Bpos, ranze.Epos
	for depth := range wm.layers {
		val <<= 1
		l := &wm.layers[depth]
		nzBpos := l.bits.Rank0(bpos)
		nzEpos := l.bits.Rank0(epos)
		nz := nzEpos - nzBpos
		if k < nz {
			bpos = nzBpos
			epos = nzEpos
		} else {
			k -= nz
			val |= 1
			bpos = l.zeroCount + bpos - nzBpos
			epos = l.zeroCount + epos - nzEpos
		}
	}
	return val
}

// RangeMin returns the smallest value in T[ranze.Bpos, ranze.Epos)
func (wm *WaveletMatrix) RangeMin(ranze Range) uint64 {
	return wm.Quantile(ranze, 0)
}

// RangeMax returns the largest value in T[ranze.Bpos, ranze.Epos)
func (wm *WaveletMatrix) RangeMax(ranze Range) uint64 {
	if ranze.Epos <= ranze.Bpos {
		panic("watrix: empty range")
	}
	return wm.Quantile(ranze, ranze.Epos-ranze.Bpos-1)
}

// Intersect returns values that occur in at least k ranges.
// k must be positive.
func (wm *WaveletMatrix) Intersect(ranges []Range, k int) []uint64 {
	if k < 1 {
		panic("watrix: intersect k must be positive")
	}
	for _, ranze := range ranges {
		wm.checkRange(ranze)
	}
	return wm.intersectHelper(ranges, k, 0, 0)
}

func (wm *WaveletMatrix) intersectHelper(ranges []Range, k int, depth uint64, prefix uint64) []uint64 {
	if depth == wm.blen {
		return []uint64{prefix}
	}
	l := &wm.layers[depth]
	zeroRanges := make([]Range, 0, len(ranges))
	oneRanges := make([]Range, 0, len(ranges))
	for _, ranze := range ranges {
		bpos, epos := ranze.Bpos, ranze.Epos
		nzBpos := l.bits.Rank0(bpos)
		nzEpos := l.bits.Rank0(epos)
		noBpos := bpos - nzBpos + l.zeroCount
		noEpos := epos - nzEpos + l.zeroCount
		if nzEpos-nzBpos > 0 {
			zeroRanges = append(zeroRanges, Range{nzBpos, nzEpos})
		}
		if noEpos-noBpos > 0 {
			oneRanges = append(oneRanges, Range{noBpos, noEpos})
		}
	}
	ret := make([]uint64, 0)
	if len(zeroRanges) >= k {
		ret = append(ret, wm.intersectHelper(zeroRanges, k, depth+1, prefix<<1)...)
	}
	if len(oneRanges) >= k {
		ret = append(ret, wm.intersectHelper(oneRanges, k, depth+1, (prefix<<1)|1)...)
	}
	return ret
}

func (wm *WaveletMatrix) checkRange(ranze Range) {
	if ranze.Bpos > ranze.Epos || ranze.Epos > wm.num {
		panic("watrix: range out of bounds")
	}
}

// inDomain reports whether val < 2^blen.
func (wm *WaveletMatrix) inDomain(val uint64) bool {
	return wm.blen >= 64 || val>>wm.blen == 0
}

// prefixInDomain reports whether val, with its ignoreBits low bits cleared,
// is below 2^blen.
func (wm *WaveletMatrix) prefixInDomain(val, ignoreBits uint64) bool {
	if ignoreBits >= 64 {
		return true
	}
	return wm.inDomain(val >> ignoreBits << ignoreBits)
}

func getMSB(x uint64, pos uint64, blen uint64) bool {
	return ((x >> (blen - pos - 1)) & 1) == 1
}
