package domain

import "errors"

// ErrRunCanceled is returned by an interrupted walk: a newer walk
// displaced it, Reset was called, or the caller context ended.
var ErrRunCanceled = errors.New("run canceled")

// ErrRunNotFound is returned when a run ID cannot be found in the registry.
var ErrRunNotFound = errors.New("run not found")

// ErrTooManyRuns is returned when the run registry is at capacity.
var ErrTooManyRuns = errors.New("too many active runs")

// ErrNoSteps is returned when an expression yields no steps to walk.
var ErrNoSteps = errors.New("expression contains no steps")

// ErrPlayerNotFound is returned when a player ID or name has no record.
var ErrPlayerNotFound = errors.New("player not found")

// ErrQuestionNotFound is returned when a question ID has no record.
var ErrQuestionNotFound = errors.New("question not found")

// ErrInvalidTimings is returned when a timing profile is not positive
// or holds for less time than its transition animates.
var ErrInvalidTimings = errors.New("invalid timing profile")
