package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/numberhop/numberhop/internal/presentation/tui"
	"github.com/spf13/cobra"
)

//go:embed lesson.md
var lessonMarkdown string

// learnCmd represents the learn command
var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Read the number line lesson",
	Long:  `Renders the built-in lesson on hopping the number line: how an expression turns into hops, and what happens at the edges of the board.`,
	Run: func(cmd *cobra.Command, args []string) {
		render := tui.NewRenderer()

		out, err := render(lessonMarkdown)
		if err != nil {
			fmt.Printf("Error rendering lesson: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(learnCmd)
}
