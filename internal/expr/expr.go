// Package expr extracts walk steps from arithmetic expressions.
//
// The extraction is deliberately forgiving: anything that is not a
// signed integer is ignored, so operators, parentheses, stray words and
// malformed fragments never make parsing fail. A minus sign binds to
// the digit run that follows it, which turns subtraction into a
// negative hop: "12-3" reads as +12 then -3.
package expr

import (
	"regexp"
	"strconv"
)

var stepPattern = regexp.MustCompile(`-?\d+`)

// Parse extracts the signed integer steps from an expression, in
// order of appearance. It never fails; expressions with no digits
// yield an empty slice.
func Parse(text string) []int {
	tokens := stepPattern.FindAllString(text, -1)
	steps := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		// The pattern guarantees digits, so the only possible error is
		// range overflow, where Atoi already returns the saturated
		// value. Downstream board clamping absorbs it.
		n, _ := strconv.Atoi(tok)
		steps = append(steps, n)
	}
	return steps
}
