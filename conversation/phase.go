package conversation

import (
	"errors"
	"fmt"
)

// Phase identifies where a deal's conversation currently is. Transitions
// only move along the allowed edges; the only way back to the initial
// phase is an explicit deal reset.
type Phase string

const (
	PhaseWaitingForOffer      Phase = "WAITING_FOR_OFFER"
	PhaseNegotiating          Phase = "NEGOTIATING"
	PhaseWaitingForPreference Phase = "WAITING_FOR_PREFERENCE"
	PhaseTerminal             Phase = "TERMINAL"
)

// Preference is the inferred axis the vendor cares about most. Empty
// means not yet inferred; once set it is never unset.
type Preference string

const (
	PreferencePrice   Preference = "PRICE"
	PreferenceTerms   Preference = "TERMS"
	PreferenceNeither Preference = "NEITHER"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

// transitions is the allowed-edge set. WAITING_FOR_PREFERENCE may return
// to NEGOTIATING once the preference is known; TERMINAL has no exits.
var transitions = map[Phase]map[Phase]bool{
	PhaseWaitingForOffer: {
		PhaseNegotiating: true,
		PhaseTerminal:    true,
	},
	PhaseNegotiating: {
		PhaseWaitingForPreference: true,
		PhaseTerminal:             true,
	},
	PhaseWaitingForPreference: {
		PhaseNegotiating: true,
		PhaseTerminal:    true,
	},
	PhaseTerminal: {},
}

// CanTransition reports whether moving from one phase to another is
// allowed. Staying in the same phase is always allowed.
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	return transitions[from][to]
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

func (p Phase) Terminal() bool {
	return p == PhaseTerminal
}

// Transition moves the state to the given phase, rejecting edges the
// conversation graph does not allow.
func (s *State) Transition(to Phase) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, to)
	}
	if !CanTransition(s.Phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, to)
	}
	s.Phase = to
	return nil
}
