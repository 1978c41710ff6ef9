package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/numberhop/numberhop"
	"github.com/numberhop/numberhop/internal/presentation/tui"
	"github.com/numberhop/numberhop/pkg/domain"
)

// walkCmd represents the walk command
var walkCmd = &cobra.Command{
	Use:   "walk [expression]",
	Short: "Animate an expression hop by hop on the number line",
	Long: `Walks an arithmetic expression locally, printing the board after
every wind-up and landing. Interrupt with Ctrl-C to rewind.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fast, _ := cmd.Flags().GetBool("fast")

		steps := numberhop.Parse(args[0])
		if len(steps) == 0 {
			fmt.Printf("No steps found in %q\n", args[0])
			os.Exit(1)
		}

		timings := numberhop.DefaultTimings()
		if fast {
			timings = numberhop.Timings{
				Transition: 100 * time.Millisecond,
				Hold:       150 * time.Millisecond,
				Pause:      250 * time.Millisecond,
			}
		}

		// Piped output gets the transcript without the animation.
		interactive := term.IsTerminal(int(os.Stdout.Fd()))

		board, err := numberhop.New(numberhop.WithTimings(timings))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if interactive {
			tui.PrintBanner()
			fmt.Println(tui.RenderBoard(board.Snapshot()))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner := numberhop.NewRunner()
		if interactive {
			runner.Output = os.Stdout
			runner.Renderer = tui.RenderBoard
		} else {
			runner.Headless = true
		}

		snap, runErr := runner.Run(ctx, board, steps)
		if runErr != nil {
			if errors.Is(runErr, domain.ErrRunCanceled) {
				fmt.Println("\nWalk interrupted, board rewound.")
				return
			}
			fmt.Printf("Error: %v\n", runErr)
			os.Exit(1)
		}

		fmt.Println()
		for _, move := range snap.Moves {
			fmt.Println(tui.RenderMove(move))
		}
		fmt.Printf("\n%s lands on %d\n", args[0], snap.FinalPosition())
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().Bool("fast", false, "Use short timings instead of the classroom pace")
}
