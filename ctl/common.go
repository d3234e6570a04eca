// Package ctl contains the implementations of the watrix commands.
// Each command is a struct configured by the cmd package and run with Run.
package ctl

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/AlexWan0/watrix"
	"github.com/AlexWan0/watrix/internal/indexfile"
	"github.com/pkg/errors"
)

// CmdIO holds the standard streams and logger shared by commands.
type CmdIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// NewCmdIO returns a CmdIO logging at info level to stderr.
func NewCmdIO(stdin io.Reader, stdout, stderr io.Writer) *CmdIO {
	return &CmdIO{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Logger: NewLogger(stderr, false),
	}
}

// NewLogger returns a text logger on w, at debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// tokenReader reads whitespace separated unsigned integers.
type tokenReader struct {
	sc *bufio.Scanner
}

func newTokenReader(r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokenReader{sc: sc}
}

// next returns the next integer, or io.EOF when the input is exhausted.
func (tr *tokenReader) next() (uint64, error) {
	if !tr.sc.Scan() {
		if err := tr.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	v, err := strconv.ParseUint(tr.sc.Text(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", tr.sc.Text())
	}
	return v, nil
}

// mustNext is next with io.EOF reported as io.ErrUnexpectedEOF.
func (tr *tokenReader) mustNext() (uint64, error) {
	v, err := tr.next()
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}

// loadIndex reads an index file from path.
func loadIndex(path string) (*watrix.WaveletMatrix, indexfile.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, indexfile.Header{}, errors.Wrap(err, "opening index")
	}
	defer f.Close()
	wm, h, err := indexfile.Read(bufio.NewReader(f))
	if err != nil {
		return nil, h, errors.Wrapf(err, "reading index %s", path)
	}
	return wm, h, nil
}
