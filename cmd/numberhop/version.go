package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/numberhop/numberhop"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of numberhop",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("numberhop version %s\n", strings.TrimSpace(numberhop.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
