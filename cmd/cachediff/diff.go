package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/layerstore/cachediff/pkg/snapshot"
)

var (
	diffDelimiter string
	diffQuiet     bool
)

var diffCmd = &cobra.Command{
	Use:   "diff [old] [new]",
	Short: "Compare two descriptor snapshots",
	Long: `Compare two snapshot files and print one entry per changed field, in the
order fields appear in the old snapshot. Exits 1 when differences exist,
0 when the snapshots are equivalent.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		old, err := snapshot.Load(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading old snapshot: %v\n", err)
			os.Exit(1)
		}
		now, err := snapshot.Load(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading new snapshot: %v\n", err)
			os.Exit(1)
		}

		entries, err := snapshot.Changed(now, old)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error comparing snapshots: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			if !diffQuiet {
				color.Green("cache valid: no differences")
			}
			return
		}

		if !diffQuiet {
			color.Yellow("cache invalidated:")
		}
		fmt.Println(strings.Join(entries, diffDelimiter))
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffDelimiter, "delimiter", "\n", "Delimiter between diff entries")
	diffCmd.Flags().BoolVarP(&diffQuiet, "quiet", "q", false, "Print only the diff entries")
}
