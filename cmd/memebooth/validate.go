package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/renderix/memebooth/internal/meme"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Check a meme config file and report per-entry problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, diags, err := meme.LoadFile(args[0])
		if err != nil {
			return err
		}

		for _, d := range diags {
			fmt.Printf("warning: %s\n", d)
		}

		fmt.Printf("%d entries loaded, %d with problems\n", len(entries), len(diags))
		for _, e := range entries {
			status := "ok"
			if e.Trigger == nil {
				status = "inert (no usable trigger)"
			}
			fmt.Printf("  %-20s %-14s %s\n", e.Name, e.Position, status)
		}
		return nil
	},
}
