package main

import (
	"fmt"
	"os"

	"github.com/numberhop/numberhop/internal/importer"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a question worksheet for consistency",
	Long: `Runs every row of a spreadsheet (.xlsx or .csv) through the import
checks without touching the database: prompts must parse to steps and
stated answers must match where the walk lands.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := importer.DefaultConfig()
		cfg.FilePath = args[0]
		if sheet, _ := cmd.Flags().GetString("sheet"); sheet != "" {
			cfg.SheetName = sheet
		}

		res, err := importer.ValidateFile(cmd.Context(), cfg)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		if len(res.Errors) > 0 {
			fmt.Printf("%d of %d rows are invalid:\n", res.Skipped, res.Processed)
			for _, msg := range res.Errors {
				fmt.Printf("  %s\n", msg)
			}
			os.Exit(1)
		}
		fmt.Printf("Worksheet is valid! ✅ (%d rows)\n", res.Processed)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("sheet", "", "Excel sheet name (default Sheet1)")
}
