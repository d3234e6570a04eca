package cmd

import (
	"io"

	"github.com/AlexWan0/watrix/ctl"
	"github.com/spf13/cobra"
)

func newBuildCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := ctl.NewBuildCommand(stdin, stdout, stderr)
	ccmd := &cobra.Command{
		Use:   "build",
		Short: "build an index file from a list of integers",
		Long: `
Reads whitespace separated unsigned integers from --input (or stdin)
and writes a wavelet matrix index to --out.
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
	flags.StringVarP(&cmd.Input, "input", "i", "", "Input file; empty or - reads stdin.")
	flags.StringVarP(&cmd.Out, "out", "o", "", "Output index path.")
	flags.Uint64Var(&cmd.BitWidth, "bit-width", 0, "Number of levels; 0 infers it from the values.")
	flags.StringVar(&cmd.Compression, "compression", cmd.Compression, "Payload compression: none, zstd or lz4.")
	return ccmd
}
