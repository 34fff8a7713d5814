package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"palletpack/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			info := buildinfo.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "palletpack %s", info["version"])
			if c := info["commit"]; c != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (commit %s)", c)
			}
			if b := info["builtAt"]; b != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", b)
			}
			if g := info["go"]; g != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " %s", g)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
