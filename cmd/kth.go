package cmd

import (
	"io"

	"github.com/AlexWan0/watrix/ctl"
	"github.com/spf13/cobra"
)

func newKthCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := ctl.NewKthCommand(stdin, stdout, stderr)
	ccmd := &cobra.Command{
		Use:   "kth",
		Short: "answer range k-th smallest queries from stdin",
		Long: `
Reads "n q", then n values, then q lines "l r k" from stdin and prints
the (k+1)-th smallest value of a[l:r] for each query.
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
	flags.Uint64Var(&cmd.BitWidth, "bit-width", ctl.DefaultKthBitWidth, "Number of levels; 0 infers it from the values.")
	return ccmd
}
