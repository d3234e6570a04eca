package ctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/AlexWan0/watrix"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// QueryCommand answers queries against an index file, one per input line:
//
//	access i
//	rank v l r
//	select v k
//	quantile l r k
//	rangefreq l r lo hi
//
// Blank lines and lines starting with '#' are skipped.
// Answers are written one per line in input order.
type QueryCommand struct {
	// Index file path.
	Index string

	// Number of goroutines answering queries. Zero uses GOMAXPROCS.
	Workers int

	*CmdIO
}

// NewQueryCommand returns a new instance of QueryCommand.
func NewQueryCommand(stdin io.Reader, stdout, stderr io.Writer) *QueryCommand {
	return &QueryCommand{
		CmdIO: NewCmdIO(stdin, stdout, stderr),
	}
}

type queryOp int

const (
	opAccess queryOp = iota
	opRank
	opSelect
	opQuantile
	opRangeFreq
)

var queryArity = map[string]struct {
	op    queryOp
	nargs int
}{
	"access":    {opAccess, 1},
	"rank":      {opRank, 3},
	"select":    {opSelect, 2},
	"quantile":  {opQuantile, 3},
	"rangefreq": {opRangeFreq, 4},
}

type query struct {
	line int
	op   queryOp
	args [4]uint64
}

func parseQuery(line int, text string) (query, bool, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return query{}, false, nil
	}
	kind, ok := queryArity[strings.ToLower(fields[0])]
	if !ok {
		return query{}, false, errors.Errorf("line %d: unknown query %q", line, fields[0])
	}
	if len(fields)-1 != kind.nargs {
		return query{}, false, errors.Errorf("line %d: %s takes %d arguments, got %d", line, fields[0], kind.nargs, len(fields)-1)
	}
	q := query{line: line, op: kind.op}
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return query{}, false, errors.Wrapf(err, "line %d", line)
		}
		q.args[i] = v
	}
	return q, true, nil
}

// answer runs q against wm. Contract violations inside the matrix
// surface as errors naming the input line.
func (q query) answer(wm watrix.WaveletTree) (res uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("line %d: %v", q.line, r)
		}
	}()
	a := q.args
	switch q.op {
	case opAccess:
		return wm.Access(a[0]), nil
	case opRank:
		return wm.Rank(a[0], watrix.Range{Bpos: a[1], Epos: a[2]}), nil
	case opSelect:
		return wm.Select(a[0], a[1]), nil
	case opQuantile:
		return wm.Quantile(watrix.Range{Bpos: a[0], Epos: a[1]}, a[2]), nil
	case opRangeFreq:
		return wm.RangeFreq(watrix.Range{Bpos: a[0], Epos: a[1]}, watrix.Range{Bpos: a[2], Epos: a[3]}), nil
	default:
		return 0, fmt.Errorf("line %d: unknown op %d", q.line, q.op)
	}
}

// Run executes the query command.
func (cmd *QueryCommand) Run(ctx context.Context) error {
	if cmd.Index == "" {
		return errors.New("index path required")
	}
	start := time.Now()
	wm, _, err := loadIndex(cmd.Index)
	if err != nil {
		return err
	}
	cmd.Logger.Debug("loaded index", "path", cmd.Index, "num", wm.Num(), "elapsed", time.Since(start))

	queries, err := readQueries(cmd.Stdin)
	if err != nil {
		return err
	}
	results, err := answerAll(ctx, wm, queries, cmd.Workers)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(cmd.Stdout)
	buf := make([]byte, 0, 24)
	for _, res := range results {
		buf = strconv.AppendUint(buf[:0], res, 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, "writing answer")
		}
	}
	cmd.Logger.Debug("answered queries", "count", len(results), "elapsed", time.Since(start))
	return errors.Wrap(w.Flush(), "flushing output")
}

func readQueries(r io.Reader) ([]query, error) {
	sc := bufio.NewScanner(r)
	queries := make([]query, 0, 64)
	for line := 1; sc.Scan(); line++ {
		q, ok, err := parseQuery(line, sc.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			queries = append(queries, q)
		}
	}
	return queries, errors.Wrap(sc.Err(), "reading queries")
}

// answerAll splits queries into contiguous chunks answered concurrently.
// The matrix is immutable, so readers share it without locking.
func answerAll(ctx context.Context, wm watrix.WaveletTree, queries []query, workers int) ([]uint64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]uint64, len(queries))
	chunk := (len(queries) + workers - 1) / workers
	if chunk == 0 {
		return results, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(queries); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(queries))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := queries[i].answer(wm)
				if err != nil {
					return err
				}
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
