package conversation

import (
	"fmt"

	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/extract"
)

// State is the per-deal conversation snapshot persisted alongside the
// deal. Offers are partial: each field stays known across turns until a
// later message overwrites it.
type State struct {
	Phase              Phase               `json:"phase"`
	LastVendorOffer    offer.Offer         `json:"last_vendor_offer"`
	LastAssistantOffer offer.Offer         `json:"last_assistant_offer"`
	VendorPreference   Preference          `json:"vendor_preference,omitempty"`
	RefusalCount       int                 `json:"refusal_count"`
	LastRefusalType    extract.RefusalType `json:"last_refusal_type,omitempty"`
	EscalationReason   string              `json:"escalation_reason,omitempty"`
}

// NewState returns a fresh conversation at the initial phase.
func NewState() State {
	return State{Phase: PhaseWaitingForOffer}
}

// Reset returns the state to its initial value. This is the only path
// back to WAITING_FOR_OFFER and the only thing that clears the refusal
// count.
func (s *State) Reset() {
	*s = NewState()
}

// Validate rejects snapshots that no sequence of transitions can
// produce, such as a vendor preference recorded before any offer was
// seen.
func (s *State) Validate() error {
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, s.Phase)
	}
	if s.RefusalCount < 0 {
		return fmt.Errorf("negative refusal count %d", s.RefusalCount)
	}
	if s.Phase == PhaseWaitingForOffer && s.VendorPreference != "" {
		return fmt.Errorf("vendor preference %q set before any offer", s.VendorPreference)
	}
	if s.EscalationReason != "" && s.Phase != PhaseTerminal {
		return fmt.Errorf("escalation reason set in non-terminal phase %s", s.Phase)
	}
	return nil
}

// SetPreference records the inferred vendor preference. The first
// confident inference wins; later signals never overwrite it.
func (s *State) SetPreference(p Preference) bool {
	if s.VendorPreference != "" || p == "" {
		return false
	}
	s.VendorPreference = p
	return true
}
