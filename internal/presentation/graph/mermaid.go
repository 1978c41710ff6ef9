// Package graph renders planned walks as Mermaid diagrams, ready to
// paste into lesson material.
package graph

import (
	"fmt"
	"strings"

	"github.com/numberhop/numberhop/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart from a planned walk:
// one node per visited position, one arrow per hop labeled with the
// applied value. The start node is a circle, absorbed hops use dotted
// arrows, and the landing position is highlighted.
func GenerateMermaid(moves []domain.Move) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	sb.WriteString(fmt.Sprintf("    s0((\"%d\"))\n", startPosition(moves)))
	for i, move := range moves {
		sb.WriteString(fmt.Sprintf("    s%d[\"%d\"]\n", i+1, move.To))

		arrow := fmt.Sprintf("-- \"%+d\" -->", move.AppliedValue)
		if move.Absorbed() {
			arrow = fmt.Sprintf("-. \"%+d\" .->", move.AppliedValue)
		}
		sb.WriteString(fmt.Sprintf("    s%d %s s%d\n", i, arrow, i+1))
	}

	sb.WriteString("\n    classDef landing fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString(fmt.Sprintf("    class s%d landing;\n", len(moves)))

	return sb.String()
}

func startPosition(moves []domain.Move) int {
	if len(moves) == 0 {
		return 0
	}
	return moves[0].From
}
