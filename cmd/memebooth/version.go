package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the MemeBooth version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("memebooth " + version)
	},
}
