package cmd

import (
	"io"

	"github.com/AlexWan0/watrix/ctl"
	"github.com/spf13/cobra"
)

func newStatsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := ctl.NewStatsCommand(stdin, stdout, stderr)
	ccmd := &cobra.Command{
		Use:   "stats",
		Short: "print a summary of an index file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := setLogger(c, cmd.CmdIO); err != nil {
				return err
			}
			return cmd.Run(c.Context())
		},
	}

	ccmd.Flags().StringVar(&cmd.Index, "index", "", "Index file path.")
	return ccmd
}
