package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/numberhop/numberhop/internal/config"
	"github.com/numberhop/numberhop/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "numberhop",
	Short: "NumberHop teaches integer arithmetic on a number line",
	Long: `NumberHop animates arithmetic expressions as hops on a number line
and runs the quiz backend behind the classroom app.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
}

// loadConfig resolves defaults, the optional config file and
// NUMBERHOP_ environment variables, then installs the configured
// logger as the default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	loader := config.NewLoader()

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = loader.LoadFromFile(path)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.New(level)
	if cfg.Logging.Format == "json" {
		logger = logging.NewJSON(level)
	}
	slog.SetDefault(logger)

	return cfg, nil
}
