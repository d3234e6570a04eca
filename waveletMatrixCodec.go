package watrix

import (
	"fmt"

	"github.com/AlexWan0/watrix/bitvector"
	"github.com/ugorji/go/codec"
)

// MarshalBinary encodes WaveletMatrix into a binary form and returns the result.
func (wm *WaveletMatrix) MarshalBinary() (out []byte, err error) {
	var mh codec.MsgpackHandle
	enc := codec.NewEncoderBytes(&out, &mh)
	err = enc.Encode(wm.blen)
	if err != nil {
		return
	}
	err = enc.Encode(wm.num)
	if err != nil {
		return
	}
	err = enc.Encode(wm.dim)
	if err != nil {
		return
	}
	for i := range wm.layers {
		err = enc.Encode(wm.layers[i].bits.Words())
		if err != nil {
			return
		}
	}
	return
}

// UnmarshalBinary decodes WaveletMatrix from a binary form generated by MarshalBinary.
func (wm *WaveletMatrix) UnmarshalBinary(in []byte) (err error) {
	var mh codec.MsgpackHandle
	dec := codec.NewDecoderBytes(in, &mh)
	var blen, num, dim uint64
	err = dec.Decode(&blen)
	if err != nil {
		return
	}
	if blen > 64 {
		return fmt.Errorf("watrix: bit width %d exceeds 64", blen)
	}
	err = dec.Decode(&num)
	if err != nil {
		return
	}
	err = dec.Decode(&dim)
	if err != nil {
		return
	}

	// Every word takes at least one byte of input.
	wantWords := bitvector.NumWords(num)
	if blen > 0 && wantWords > uint64(len(in)) {
		return fmt.Errorf("watrix: length %d needs more words than the input holds", num)
	}
	per := bitvector.NumBlocks(num)
	arena := make([]bitvector.Block, int(blen)*per)
	layers := make([]layer, blen)
	for depth := range layers {
		var words []uint64
		err = dec.Decode(&words)
		if err != nil {
			return
		}
		if uint64(len(words)) != wantWords {
			return fmt.Errorf("watrix: layer %d has %d words, want %d", depth, len(words), wantWords)
		}
		off := depth * per
		bv := bitvector.FromWordsInto(arena[off:off+per], words, num)
		layers[depth] = layer{bits: *bv, zeroCount: bv.Zeros()}
	}

	*wm = WaveletMatrix{
		arena:  arena,
		layers: layers,
		dim:    dim,
		num:    num,
		blen:   blen,
	}
	return nil
}
