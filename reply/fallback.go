package reply

import (
	"fmt"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/extract"
)

// Fallback returns the deterministic reply for an intent. Every
// template stays inside the length band, avoids the denied vocabulary,
// and embeds the exact price and terms values, so it always passes
// Validate for its own data.
func Fallback(data PromptData) string {
	switch data.Intent {
	case conversation.IntentGreet:
		return "Hello! Thanks for getting in touch. Could you share your unit price and payment terms so we can get started?"

	case conversation.IntentAskForOffer:
		return "Could you send over a concrete quote? We need your unit price and payment terms to move forward."

	case conversation.IntentCounterDirect:
		price := offer.FormatPrice(data.Counter.Price())
		if data.Counter.HasTerms() {
			return fmt.Sprintf("Thanks for the offer. We are not quite there yet - could you do %s per unit with %s payment terms?", price, data.Counter.Terms())
		}
		return fmt.Sprintf("Thanks for the offer. We are not quite there yet - could you do %s per unit?", price)

	case conversation.IntentCounterIndirect:
		return "Thanks for the details. Your current position is a bit outside what works for us. Is there any room to improve the offer?"

	case conversation.IntentAccept:
		price := offer.FormatPrice(data.AcceptedOffer.Price())
		if data.AcceptedOffer.HasTerms() {
			return fmt.Sprintf("That works for us. We accept %s per unit with %s payment terms. We will get the paperwork moving on our side.", price, data.AcceptedOffer.Terms())
		}
		return fmt.Sprintf("That works for us. We accept %s per unit. We will get the paperwork moving on our side.", price)

	case conversation.IntentWalkAway:
		return "We appreciate the discussion, but the gap between our positions is too large to bridge this time. We would be glad to revisit things on a future requirement."

	case conversation.IntentEscalate:
		return "Thanks for your patience. I am looping in a manager to review where we have landed, and someone from our side will follow up with you shortly."

	case conversation.IntentAskForPreference:
		return "To help us find common ground: what matters more to you in this deal, the unit price or the payment terms?"

	case conversation.IntentAcknowledgePreference:
		return fmt.Sprintf("Understood - %s is the priority for you. Let us focus the discussion there and see what we can do.", preferenceNoun(data.Preference))

	case conversation.IntentHandleRefusal:
		return refusalFallback(data.RefusalType)
	}

	return "Could you clarify your current offer? We want to make sure we are working from the same numbers."
}

func refusalFallback(rt extract.RefusalType) string {
	switch rt {
	case extract.RefusalLater:
		return "No problem at all - we can pick this up whenever suits you. Just reply here when you are ready to continue."
	case extract.RefusalAlreadyShared:
		return "Apologies if we are repeating ourselves. To confirm we have it right, could you restate your current unit price and payment terms?"
	case extract.RefusalConfused:
		return "Sorry for the confusion. Put simply: what unit price and payment terms can you offer us for this order?"
	default:
		return "Understood. Could you tell us what would make this deal workable on your side? We would like to keep the conversation going."
	}
}
