package ctl

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/AlexWan0/watrix"
	"github.com/pkg/errors"
)

// DefaultKthBitWidth covers values below 2^30.
const DefaultKthBitWidth = 30

// KthCommand answers "range k-th smallest" problems.
//
// Input is "n q", then n values, then q triples "l r k";
// each answer is the (k+1)-th smallest value of a[l:r] on its own line.
type KthCommand struct {
	// Number of levels. Zero infers it from the values.
	BitWidth uint64

	*CmdIO
}

// NewKthCommand returns a new instance of KthCommand.
func NewKthCommand(stdin io.Reader, stdout, stderr io.Writer) *KthCommand {
	return &KthCommand{
		BitWidth: DefaultKthBitWidth,
		CmdIO:    NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the kth command.
func (cmd *KthCommand) Run(ctx context.Context) error {
	tr := newTokenReader(cmd.Stdin)
	n, err := tr.mustNext()
	if err != nil {
		return errors.Wrap(err, "reading n")
	}
	q, err := tr.mustNext()
	if err != nil {
		return errors.Wrap(err, "reading q")
	}
	// n is untrusted, so grow as values arrive.
	vals := make([]uint64, 0, min(n, 1<<16))
	for i := uint64(0); i < n; i++ {
		v, err := tr.mustNext()
		if err != nil {
			return errors.Wrapf(err, "reading a[%d]", i)
		}
		vals = append(vals, v)
	}

	start := time.Now()
	wm, err := buildMatrix(cmd.BitWidth, vals)
	if err != nil {
		return err
	}
	cmd.Logger.Debug("built matrix", "num", wm.Num(), "bitWidth", wm.BitWidth(), "elapsed", time.Since(start))

	w := bufio.NewWriter(cmd.Stdout)
	buf := make([]byte, 0, 24)
	for i := uint64(0); i < q; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var l, r, k uint64
		if l, err = tr.mustNext(); err == nil {
			if r, err = tr.mustNext(); err == nil {
				k, err = tr.mustNext()
			}
		}
		if err != nil {
			return errors.Wrapf(err, "reading query %d", i)
		}
		if l > r || r > n || k >= r-l {
			return errors.Errorf("query %d: invalid range [%d, %d) with k=%d", i, l, r, k)
		}
		buf = strconv.AppendUint(buf[:0], wm.Quantile(watrix.Range{Bpos: l, Epos: r}, k), 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, "writing answer")
		}
	}
	return errors.Wrap(w.Flush(), "flushing output")
}

// buildMatrix builds a matrix, inferring the width when bitWidth is zero
// and reporting values that do not fit instead of panicking.
func buildMatrix(bitWidth uint64, vals []uint64) (*watrix.WaveletMatrix, error) {
	if bitWidth > 64 {
		return nil, errors.Errorf("bit width %d exceeds 64", bitWidth)
	}
	if bitWidth == 0 {
		b := watrix.NewBuilder()
		for _, v := range vals {
			b.PushBack(v)
		}
		return b.Build(), nil
	}
	if bitWidth < 64 {
		for i, v := range vals {
			if v>>bitWidth != 0 {
				return nil, errors.Errorf("value %d at %d does not fit in %d bits", v, i, bitWidth)
			}
		}
	}
	return watrix.New(bitWidth, vals), nil
}
