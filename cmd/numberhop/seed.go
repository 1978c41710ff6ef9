package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/numberhop/numberhop/internal/adapters/sqlstore"
	"github.com/numberhop/numberhop/internal/importer"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load questions into the bank",
	Long: `Fills the question bank, either from a spreadsheet (.xlsx or .csv) with
level, expression and optional answer columns, or by generating random
walks for a difficulty level.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		store, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			fmt.Printf("Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		file, _ := cmd.Flags().GetString("file")
		generate, _ := cmd.Flags().GetBool("generate")

		switch {
		case file != "":
			im := importer.New(store, importer.WithLogger(slog.Default()))

			icfg := importer.DefaultConfig()
			icfg.FilePath = file
			if sheet, _ := cmd.Flags().GetString("sheet"); sheet != "" {
				icfg.SheetName = sheet
			}

			res, err := im.ImportFile(cmd.Context(), icfg)
			if err != nil {
				fmt.Printf("Error importing questions: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Imported %d of %d rows (%d skipped)\n", res.Created, res.Processed, res.Skipped)
			for _, msg := range res.Errors {
				fmt.Printf("  skipped: %s\n", msg)
			}

		case generate:
			level, _ := cmd.Flags().GetInt("level")
			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			for _, q := range importer.Generate(level, count, seed) {
				if err := store.AddQuestion(cmd.Context(), &q); err != nil {
					fmt.Printf("Error storing question: %v\n", err)
					os.Exit(1)
				}
			}
			fmt.Printf("Generated %d level %d questions\n", count, level)

		default:
			fmt.Println("Nothing to do: pass --file or --generate.")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "", "spreadsheet (.xlsx or .csv) to import")
	seedCmd.Flags().String("sheet", "", "Excel sheet name (default Sheet1)")
	seedCmd.Flags().Bool("generate", false, "generate random questions instead of importing")
	seedCmd.Flags().Int("level", 1, "difficulty level for generated questions")
	seedCmd.Flags().Int("count", 10, "number of questions to generate")
	seedCmd.Flags().Int64("seed", 0, "random seed, 0 draws from the clock")
}
