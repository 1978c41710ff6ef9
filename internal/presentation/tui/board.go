// Package tui renders walks and lessons for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/numberhop/numberhop/pkg/domain"
)

// RenderBoard draws the number line with the token on its current
// position. During a hop the target cell is marked as well, so the
// wind-up is visible before the token lands.
func RenderBoard(snap domain.Snapshot) string {
	p := termenv.ColorProfile()

	var b strings.Builder
	for pos := domain.MinPosition; pos <= domain.MaxPosition; pos++ {
		cell := "·"
		switch {
		case pos == snap.Position:
			cell = termenv.String("●").Foreground(p.Color("#f472b6")).Bold().String()
		case snap.Pending != nil && pos == snap.Pending.Target:
			cell = termenv.String("○").Foreground(p.Color("#818cf8")).String()
		case pos == 0:
			cell = "|"
		}
		b.WriteString(cell)
		if pos < domain.MaxPosition {
			b.WriteString(" ")
		}
	}

	b.WriteString(fmt.Sprintf("   %s", statusText(snap)))
	return b.String()
}

func statusText(snap domain.Snapshot) string {
	switch snap.Phase {
	case domain.PhaseMoving:
		if snap.Pending != nil {
			return fmt.Sprintf("hop %d/%d: %d %s %d",
				snap.StepIndex+1, snap.StepCount,
				snap.Pending.From, arrow(snap.Pending.Direction), snap.Pending.Target)
		}
		return fmt.Sprintf("hop %d/%d", snap.StepIndex+1, snap.StepCount)
	case domain.PhasePaused:
		return fmt.Sprintf("resting on %d", snap.Position)
	default:
		return fmt.Sprintf("landed on %d", snap.Position)
	}
}

func arrow(d domain.Direction) string {
	switch d {
	case domain.DirectionLeft:
		return "<-"
	case domain.DirectionRight:
		return "->"
	default:
		return "--"
	}
}

// RenderMove formats one committed hop for a transcript line.
func RenderMove(move domain.Move) string {
	p := termenv.ColorProfile()

	value := fmt.Sprintf("%+d", move.AppliedValue)
	text := fmt.Sprintf("hop %d: %d %s = %d", move.SequenceID+1, move.From, value, move.To)
	if move.Absorbed() {
		return termenv.String(text + "  (edge)").Foreground(p.Color("#fbbf24")).String()
	}
	return text
}
