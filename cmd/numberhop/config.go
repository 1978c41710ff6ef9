package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Prints the configuration after defaults, the config file and NUMBERHOP_*
environment variables have been applied, in the same YAML layout the
config file uses. The Redis password is redacted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		if cfg.Redis.Password != "" {
			cfg.Redis.Password = "[redacted]"
		}

		data, err := cfg.YAML()
		if err != nil {
			fmt.Printf("Error rendering config: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(string(data))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
