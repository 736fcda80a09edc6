package booking

import (
	"fmt"
	"slices"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// transitions is the booking lifecycle. Statuses without an entry are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDenied, StatusCancelled},
	StatusApproved: {StatusCancelled, StatusCompleted},
}

// TransitionError describes a lifecycle move that is not allowed.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("booking is already %s and cannot move to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CheckTransition returns an InvalidTransition error unless from -> to is allowed.
// Repeating a transition that already happened (e.g. approved -> approved) is refused.
func CheckTransition(from, to Status) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	te := &TransitionError{From: from, To: to}
	return apperror.Wrap(te, apperror.KindInvalidTransition, te.Error())
}
