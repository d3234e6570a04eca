package ctl

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexWan0/watrix/internal/indexfile"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// BuildCommand reads whitespace separated values and writes an index file.
type BuildCommand struct {
	// Input file; empty or "-" reads stdin.
	Input string

	// Output index path.
	Out string

	// Number of levels. Zero infers it from the values.
	BitWidth uint64

	// Payload compression: none, zstd or lz4.
	Compression string

	*CmdIO
}

// NewBuildCommand returns a new instance of BuildCommand.
func NewBuildCommand(stdin io.Reader, stdout, stderr io.Writer) *BuildCommand {
	return &BuildCommand{
		Compression: "zstd",
		CmdIO:       NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the build command.
func (cmd *BuildCommand) Run(ctx context.Context) error {
	if cmd.Out == "" {
		return errors.New("output path required")
	}
	c, err := indexfile.ParseCompression(cmd.Compression)
	if err != nil {
		return err
	}

	in := cmd.Stdin
	if cmd.Input != "" && cmd.Input != "-" {
		f, err := os.Open(cmd.Input)
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}

	vals, err := readValues(ctx, in)
	if err != nil {
		return err
	}

	start := time.Now()
	wm, err := buildMatrix(cmd.BitWidth, vals)
	if err != nil {
		return err
	}
	cmd.Logger.Info("built matrix",
		"num", wm.Num(),
		"bitWidth", wm.BitWidth(),
		"levels", humanize.Bytes(uint64(wm.AllocSize())),
		"elapsed", time.Since(start))

	h, err := writeIndexFile(cmd.Out, func(w io.Writer) (indexfile.Header, error) {
		return indexfile.Write(w, wm, c)
	})
	if err != nil {
		return err
	}
	cmd.Logger.Info("wrote index",
		"path", cmd.Out,
		"compression", h.Compression.String(),
		"payload", humanize.Bytes(h.PayloadLen),
		"stored", humanize.Bytes(h.StoredLen))
	return nil
}

// readValues reads every integer of r.
func readValues(ctx context.Context, r io.Reader) ([]uint64, error) {
	tr := newTokenReader(r)
	vals := make([]uint64, 0, 1024)
	for {
		if len(vals)%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		v, err := tr.next()
		if err == io.EOF {
			return vals, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading value %d", len(vals))
		}
		vals = append(vals, v)
	}
}

// writeIndexFile writes through a temporary file renamed into place.
func writeIndexFile(path string, write func(io.Writer) (indexfile.Header, error)) (h indexfile.Header, err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return h, errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if h, err = write(bw); err != nil {
		return h, err
	}
	if err = bw.Flush(); err != nil {
		return h, errors.Wrap(err, "flushing index")
	}
	if err = f.Sync(); err != nil {
		return h, errors.Wrap(err, "syncing index")
	}
	if err = f.Close(); err != nil {
		return h, errors.Wrap(err, "closing index")
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return h, errors.Wrap(err, "renaming index")
	}
	return h, nil
}
