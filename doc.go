/*
Package numberhop animates integer arithmetic as walks on a bounded
number line, designed for teaching tools that show children where
numbers go rather than just what they equal.

It implements a timed sequencer with observable wind-ups: every hop is
visible before it commits, and the board rests between hops so a
learner can predict the landing.

# Concept

NumberHop treats an expression like "12-3" as a walk: start on zero,
hop 12 to the right, hop 3 back to the left. The board runs from -10
to +10 and absorbs any hop that would leave it, so the first hop of
that walk lands on the edge instead of overshooting. The engine
manages parsing, timing, and state snapshots, while your application
("Host") manages the I/O: a CLI animation, an HTTP stream, or an AI
agent tool.

# Key Features

  - Observable rhythm: wind-up, commit, and rest are separate stages,
    each published as an immutable snapshot.
  - Bounded board: hops saturate at the edges instead of overflowing.
  - Displacement: starting a new walk rewinds and replaces the one in
    flight; state never blends between walks.
  - Mock-clock friendly: inject a clock and drive walks in tests
    without waiting wall time.

# Usage

Create a Board, then either run a whole expression with Walk or plan
it first with Plan.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/numberhop/numberhop"
	)

	func main() {
		board, err := numberhop.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		// Watch emits a snapshot for every stage of the walk.
		go func() {
			for snap := range board.Watch(ctx) {
				fmt.Printf("position %d (%s)\n", snap.Position, snap.Phase)
			}
		}()

		// Walk blocks until the runner lands.
		if err := board.Walk(ctx, "12-3"); err != nil {
			log.Fatal(err)
		}

		fmt.Println("landed on", board.Snapshot().FinalPosition())
	}
*/
package numberhop
