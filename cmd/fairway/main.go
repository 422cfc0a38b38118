package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "fairway",
	Short:         "Personal golf coaching assistant",
	Long:          "fairway is a conversational golf coach that remembers each golfer:\ntheir skill level, swing issues, goals, and a searchable drill library.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(golfersCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(drillsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
