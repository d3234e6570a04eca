// Package cmd wires the ctl commands into a cobra command tree.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlexWan0/watrix/ctl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by setAllConfig.
const EnvPrefix = "WATRIX"

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "watrix",
		Short: "watrix builds and queries wavelet matrix indexes.",
		Long: `watrix builds and queries wavelet matrix indexes.

A wavelet matrix stores a sequence of integers in about n*b bits and
answers access, rank, select, quantile and range frequency queries
in O(b) time, where b is the bit width of the values.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			return setAllConfig(v, cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")
	rc.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")

	rc.AddCommand(newKthCommand(stdin, stdout, stderr))
	rc.AddCommand(newBuildCommand(stdin, stdout, stderr))
	rc.AddCommand(newQueryCommand(stdin, stdout, stderr))
	rc.AddCommand(newStatsCommand(stdin, stdout, stderr))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order.
//
// Environment variables are the flag names upper-cased, with dashes replaced
// by underscores, prefixed with EnvPrefix and an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		// Flags set on the command line win.
		if flagErr != nil || f.Changed {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}

// setLogger points cio's logger at its stderr, honoring --verbose.
func setLogger(c *cobra.Command, cio *ctl.CmdIO) error {
	verbose, err := c.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	cio.Logger = ctl.NewLogger(cio.Stderr, verbose)
	return nil
}
