package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of newsdesk",
		// No config is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "newsdesk %s\n", Version)
			fmt.Fprintln(out, "Headlines & search in the terminal")
			fmt.Fprintln(out, "github.com/pders01/newsdesk")
		},
	}
}
