package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/layerstore/cachediff/pkg/snapshot"
)

var (
	watchGlob string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch snapshot files and report changes as they happen",
	Long: `Watch a directory tree for snapshot file changes. Each change is diffed
against the last seen content (remembered across runs) and reported as
soon as it settles. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := snapshot.NewWatcher(args[0], watchGlob, slog.Default())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan error, 1)
		go func() {
			done <- w.Run(ctx)
		}()

		for ev := range w.Events() {
			color.Yellow("%s invalidated:", ev.Path)
			fmt.Println(strings.Join(ev.Diff, "\n"))
		}

		if err := <-done; err != nil {
			fmt.Fprintf(os.Stderr, "Watcher stopped: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchGlob, "glob", "**/*.{yml,yaml}", "Glob for snapshot files, relative to the watched directory")
}
