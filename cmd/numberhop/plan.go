package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/numberhop/numberhop"
	"github.com/numberhop/numberhop/internal/presentation/graph"
	"github.com/numberhop/numberhop/internal/presentation/tui"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [expression]",
	Short: "Show the hops an expression produces, without animating",
	Long: `Parses an expression and prints every hop with board limits
applied. With --mermaid the plan is emitted as a Mermaid diagram for
lesson material.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		steps := numberhop.Parse(args[0])
		if len(steps) == 0 {
			fmt.Printf("No steps found in %q\n", args[0])
			os.Exit(1)
		}

		moves := numberhop.Plan(steps)

		if mermaid {
			fmt.Print(graph.GenerateMermaid(moves))
			return
		}

		for _, move := range moves {
			fmt.Println(tui.RenderMove(move))
		}
		fmt.Printf("\n%s lands on %d\n", args[0], numberhop.Final(steps))
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Bool("mermaid", false, "Emit the plan as a Mermaid diagram")
}
