package bitvector

import (
	"fmt"

	"github.com/ugorji/go/codec"
)

// Words returns a copy of the packed bits, one word per full or partial block.
func (bv *BitVector) Words() []uint64 {
	words := make([]uint64, NumWords(bv.n))
	for i := range words {
		words[i] = bv.blocks[i].Bits
	}
	return words
}

// MarshalBinary encodes the BitVector into a binary form and returns the result.
// Cumulative sums are not stored; they are recomputed on decode.
func (bv *BitVector) MarshalBinary() (out []byte, err error) {
	var mh codec.MsgpackHandle
	enc := codec.NewEncoderBytes(&out, &mh)
	err = enc.Encode(bv.n)
	if err != nil {
		return
	}
	err = enc.Encode(bv.Words())
	return
}

// UnmarshalBinary decodes the BitVector from a binary form generated by MarshalBinary.
func (bv *BitVector) UnmarshalBinary(in []byte) error {
	var mh codec.MsgpackHandle
	dec := codec.NewDecoderBytes(in, &mh)
	var n uint64
	if err := dec.Decode(&n); err != nil {
		return err
	}
	var words []uint64
	if err := dec.Decode(&words); err != nil {
		return err
	}
	if want := NumWords(n); uint64(len(words)) != want {
		return fmt.Errorf("bitvector: %d words for length %d, want %d", len(words), n, want)
	}
	*bv = *FromWords(words, n)
	return nil
}
