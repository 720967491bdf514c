package reply

import (
	"fmt"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/extract"
)

// PromptData carries the turn-specific values a prompt may embed.
// Counter and AcceptedOffer are only consulted for the intents that
// reference them.
type PromptData struct {
	Intent        conversation.Intent
	Counter       *offer.Offer
	AcceptedOffer *offer.Offer
	RefusalType   extract.RefusalType
	Preference    conversation.Preference
}

const systemPrompt = `You are a professional procurement assistant negotiating with a vendor on behalf of a buyer. Write a single short message to the vendor. Be polite, concrete, and businesslike. Never mention internal scoring, thresholds, or that you are an automated system.`

// SystemPrompt is the instruction sent with every generation call.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt renders the intent-specific instruction for one turn.
// Context-free intents get static text; data-bearing intents embed the
// concrete values the reply must state.
func BuildPrompt(data PromptData) string {
	switch data.Intent {
	case conversation.IntentGreet:
		return "Greet the vendor briefly and ask what pricing and payment terms they can offer."

	case conversation.IntentAskForOffer:
		return "Ask the vendor for a concrete quote: unit price and payment terms."

	case conversation.IntentCounterDirect:
		price := offer.FormatPrice(data.Counter.Price())
		return fmt.Sprintf(
			"Make a counter-offer of %s per unit with %s payment terms. State both values exactly as written here. Keep the tone collaborative.",
			price, data.Counter.Terms())

	case conversation.IntentCounterIndirect:
		return "Tell the vendor their current position does not work for us and ask them to improve their offer, without naming a specific number."

	case conversation.IntentAccept:
		parts := fmt.Sprintf("a unit price of %s", offer.FormatPrice(data.AcceptedOffer.Price()))
		if data.AcceptedOffer.HasTerms() {
			parts += fmt.Sprintf(" with %s payment terms", data.AcceptedOffer.Terms())
		}
		return fmt.Sprintf(
			"Accept the vendor's offer of %s. State the accepted price exactly as written here and confirm we will proceed to the paperwork.",
			parts)

	case conversation.IntentWalkAway:
		return "Politely end the negotiation: the gap between our positions is too large. Wish them well and leave the door open for a future deal."

	case conversation.IntentEscalate:
		return "Tell the vendor you are escalating this negotiation to a manager for review and that someone will follow up."

	case conversation.IntentAskForPreference:
		return "Ask the vendor whether unit price or payment terms matters more to them, so we can focus the discussion."

	case conversation.IntentAcknowledgePreference:
		return fmt.Sprintf(
			"Acknowledge that the vendor cares most about %s and steer the discussion toward a proposal on that axis.",
			preferenceNoun(data.Preference))

	case conversation.IntentHandleRefusal:
		return refusalPrompt(data.RefusalType)
	}

	return "Ask the vendor to clarify their current offer."
}

func refusalPrompt(rt extract.RefusalType) string {
	switch rt {
	case extract.RefusalLater:
		return "The vendor wants to continue later. Acknowledge that and propose picking the discussion back up, keeping the tone light."
	case extract.RefusalAlreadyShared:
		return "The vendor says they already shared their numbers. Apologize briefly and restate what we still need from them."
	case extract.RefusalConfused:
		return "The vendor seems confused. Rephrase what we are asking for in one plain sentence."
	default:
		return "The vendor declined to move. Acknowledge their position and gently ask what would make a deal workable for them."
	}
}

func preferenceNoun(p conversation.Preference) string {
	switch p {
	case conversation.PreferenceTerms:
		return "payment terms"
	case conversation.PreferenceNeither:
		return "neither price nor terms alone"
	default:
		return "unit price"
	}
}
