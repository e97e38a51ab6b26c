package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sessionscope"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sessionscope",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sessionscope version %s\n", strings.TrimSpace(sessionscope.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
