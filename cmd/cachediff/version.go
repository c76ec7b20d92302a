package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/layerstore/cachediff"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cachediff",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cachediff version %s\n", strings.TrimSpace(cachediff.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
