package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/numberhop/numberhop/internal/adapters/sqlstore"
	"github.com/spf13/cobra"
)

// topCmd represents the top command
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the leaderboard",
	Long:  `Aggregates the stored scores and prints the top players by total points, best first.`,
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

		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := store.TopTotals(cmd.Context(), limit)
		if err != nil {
			fmt.Printf("Error reading leaderboard: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Println("No scores recorded yet.")
			return
		}

		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
		podium := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))

		fmt.Println(header.Render(fmt.Sprintf("%4s  %-24s %s", "RANK", "PLAYER", "POINTS")))
		for _, e := range entries {
			line := fmt.Sprintf("%4d  %-24s %d", e.Rank, e.Username, e.TotalPoints)
			if e.Rank <= 3 {
				line = podium.Render(line)
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntP("limit", "n", 10, "number of players to show")
}
