package cmd

import (
	"io"

	"github.com/AlexWan0/watrix/ctl"
	"github.com/spf13/cobra"
)

func newQueryCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := ctl.NewQueryCommand(stdin, stdout, stderr)
	ccmd := &cobra.Command{
		Use:   "query",
		Short: "answer queries read from stdin against an index",
		Long: `
Reads one query per line from stdin and prints one answer per line:

	access i
	rank v l r
	select v k
	quantile l r k
	rangefreq l r lo hi
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := setLogger(c, cmd.CmdIO); err != nil {
				return err
			}
			return cmd.Run(c.Context())
		},
	}

	flags := ccmd.Flags()
	flags.StringVar(&cmd.Index, "index", "", "Index file path.")
	flags.IntVar(&cmd.Workers, "workers", 0, "Concurrent query workers; 0 uses GOMAXPROCS.")
	return ccmd
}
