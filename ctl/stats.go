package ctl

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AlexWan0/watrix/bitvector"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// StatsCommand prints a summary of an index file.
type StatsCommand struct {
	// Index file path.
	Index string

	*CmdIO
}

// NewStatsCommand returns a new instance of StatsCommand.
func NewStatsCommand(stdin io.Reader, stdout, stderr io.Writer) *StatsCommand {
	return &StatsCommand{
		CmdIO: NewCmdIO(stdin, stdout, stderr),
	}
}

// Run executes the stats command.
func (cmd *StatsCommand) Run(_ context.Context) error {
	if cmd.Index == "" {
		return errors.New("index path required")
	}
	wm, h, err := loadIndex(cmd.Index)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "values:\t%s\n", humanize.Comma(int64(wm.Num())))
	fmt.Fprintf(tw, "bit width:\t%d\n", wm.BitWidth())
	fmt.Fprintf(tw, "max value:\t%s\n", maxValue(wm.Dim()))
	fmt.Fprintf(tw, "levels size:\t%s\n", humanize.IBytes(uint64(wm.AllocSize())))
	fmt.Fprintf(tw, "compression:\t%s\n", h.Compression)
	fmt.Fprintf(tw, "payload:\t%s\n", humanize.IBytes(h.PayloadLen))
	fmt.Fprintf(tw, "stored:\t%s\n", humanize.IBytes(h.StoredLen))
	fmt.Fprintf(tw, "checksum:\t%016x\n", h.Checksum)
	fmt.Fprintf(tw, "hardware select:\t%t\n", bitvector.HasHardwareSelect())
	for depth := uint64(0); depth < wm.BitWidth(); depth++ {
		fmt.Fprintf(tw, "level %d (bit %d) zeros:\t%d\n", depth, wm.BitWidth()-depth-1, wm.ZeroCount(depth))
	}
	return errors.Wrap(tw.Flush(), "writing stats")
}

func maxValue(dim uint64) string {
	if dim == 0 {
		return "-"
	}
	return fmt.Sprint(dim - 1)
}
