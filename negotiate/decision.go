package negotiate

import (
	"math"

	"github.com/accordo-ai/accordo/core/offer"
)

// Action is the decision algorithm's selected move for a turn.
type Action string

const (
	ActionAccept   Action = "ACCEPT"
	ActionCounter  Action = "COUNTER"
	ActionWalkAway Action = "WALK_AWAY"
	ActionEscalate Action = "ESCALATE"
)

// Decision is the algorithm's output. Counter is set only for COUNTER
// actions where a concrete counter-offer could be computed (the vendor
// stated a price to counter against).
type Decision struct {
	Action    Action       `json:"action"`
	Utility   float64      `json:"utility"`
	Counter   *offer.Offer `json:"counter,omitempty"`
	Rationale string       `json:"rationale,omitempty"`
}

// Input carries everything the decision algorithm may consult. The last
// assistant price anchors the counter concession; when the assistant has not
// yet made an offer, the concession anchors from the configured minimum.
type Input struct {
	Offer              offer.Offer
	Round              int
	LastAssistantPrice *float64
	Config             offer.NegotiationConfig
}

// Decide selects an action for a scored vendor offer. Rules, in priority
// order: accept at or above the accept threshold; walk away strictly below
// the walk-away threshold; escalate once the round limit is reached (an
// unresolved negotiation must not loop forever); otherwise counter.
func Decide(in Input) Decision {
	utility := Score(in.Offer, in.Config)
	t := in.Config.Thresholds

	switch {
	case utility >= t.AcceptAt:
		return Decision{
			Action:    ActionAccept,
			Utility:   utility,
			Rationale: "utility meets accept threshold",
		}
	case utility < t.WalkAwayBelow:
		return Decision{
			Action:    ActionWalkAway,
			Utility:   utility,
			Rationale: "utility below walk-away threshold",
		}
	case in.Round >= in.Config.MaxRounds:
		return Decision{
			Action:    ActionEscalate,
			Utility:   utility,
			Rationale: "round limit reached without agreement",
		}
	default:
		return Decision{
			Action:    ActionCounter,
			Utility:   utility,
			Counter:   counterOffer(in),
			Rationale: "utility in counter band",
		}
	}
}

// counterOffer computes a MESO-style linear concession: price moves to the
// midpoint between our last position and the vendor's current price, clamped
// to the configured minimum. Terms stay ideal unless the vendor already
// offered an acceptable term, which we then keep.
func counterOffer(in Input) *offer.Offer {
	if !in.Offer.HasPrice() {
		return nil
	}

	anchor := in.Config.Price.Min
	if in.LastAssistantPrice != nil {
		anchor = *in.LastAssistantPrice
	}

	price := (anchor + in.Offer.Price()) / 2
	price = math.Max(price, in.Config.Price.Min)
	price = roundCents(price)

	terms := in.Config.Terms.Ideal
	if in.Offer.HasTerms() && in.Config.TermAcceptable(in.Offer.Terms()) {
		terms = in.Offer.Terms()
	}

	counter := offer.New(price, terms)
	return &counter
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
