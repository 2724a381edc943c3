package main

import (
	"fmt"

	"github.com/spf13/cobra"

	stateline "github.com/stateline-dev/stateline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stateline",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stateline version %s\n", stateline.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
