package conversation

import (
	"github.com/accordo-ai/accordo/extract"
	"github.com/accordo-ai/accordo/negotiate"
)

// Intent is the communicative goal of the assistant's next reply.
type Intent string

const (
	IntentGreet                 Intent = "GREET"
	IntentAskForOffer           Intent = "ASK_FOR_OFFER"
	IntentCounterDirect         Intent = "COUNTER_DIRECT"
	IntentCounterIndirect       Intent = "COUNTER_INDIRECT"
	IntentAccept                Intent = "ACCEPT"
	IntentWalkAway              Intent = "WALK_AWAY"
	IntentEscalate              Intent = "ESCALATE"
	IntentAskForPreference      Intent = "ASK_FOR_PREFERENCE"
	IntentAcknowledgePreference Intent = "ACKNOWLEDGE_PREFERENCE"
	IntentHandleRefusal         Intent = "HANDLE_REFUSAL"
)

// ResolveInput carries everything intent resolution may consult for one
// turn. Decision is nil when no offer could be scored this turn.
type ResolveInput struct {
	Phase             Phase
	Decision          *negotiate.Decision
	Refusal           extract.RefusalType
	Text              string
	PreferenceJustSet bool
}

// Resolve picks the intent for the turn. Refusals win over everything;
// a freshly inferred preference is acknowledged before anything else;
// phase-specific prompts take precedence over decision-derived intents;
// without a decision the resolver falls back to greeting detection and
// finally to an indirect counter.
func Resolve(in ResolveInput) Intent {
	if in.Refusal != extract.RefusalNone {
		return IntentHandleRefusal
	}
	if in.PreferenceJustSet {
		return IntentAcknowledgePreference
	}

	switch in.Phase {
	case PhaseWaitingForOffer:
		return IntentAskForOffer
	case PhaseWaitingForPreference:
		return IntentAskForPreference
	}

	if in.Decision != nil {
		switch in.Decision.Action {
		case negotiate.ActionAccept:
			return IntentAccept
		case negotiate.ActionWalkAway:
			return IntentWalkAway
		case negotiate.ActionEscalate:
			return IntentEscalate
		case negotiate.ActionCounter:
			if in.Decision.Counter != nil {
				return IntentCounterDirect
			}
			return IntentCounterIndirect
		}
	}

	if extract.IsGreeting(in.Text) {
		return IntentGreet
	}
	return IntentCounterIndirect
}
