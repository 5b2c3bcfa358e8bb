package pipeline

import (
	"errors"
	"fmt"

	"leadgen-engine/internal/domain"
)

type State int

const (
	StateSearching State = iota
	StateEvaluating
	StateRefining
	StateExtracting
	StateDone
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateEvaluating:
		return "evaluating"
	case StateRefining:
		return "refining"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrAcquisitionExhausted means the retry budget ran out without a single
// relevant result. It is fatal to the run.
var ErrAcquisitionExhausted = errors.New("acquisition exhausted")

// ExhaustedError carries the details behind ErrAcquisitionExhausted.
type ExhaustedError struct {
	Attempts  int
	LastQuery string
	Cause     error // last search failure, if the final attempt failed
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s: no relevant results after %d attempt(s), last query %q",
		ErrAcquisitionExhausted, e.Attempts, e.LastQuery)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrAcquisitionExhausted, e.Cause}
	}
	return []error{ErrAcquisitionExhausted}
}

// run is the mutable state of one Run. The attempt counter lives here, not
// in the call stack.
type run struct {
	state   State
	attempt int
	query   domain.Query
	target  int

	results     []domain.SearchResult
	assessments []domain.RelevanceAssessment
	aggregate   float64
	lastErr     error

	// Most recent non-empty batch that was searched and evaluated.
	held       []domain.SearchResult
	heldAssess []domain.RelevanceAssessment
}

func relevantCount(as []domain.RelevanceAssessment) int {
	n := 0
	for _, a := range as {
		if a.IsRelevant {
			n++
		}
	}
	return n
}
