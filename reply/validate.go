package reply

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
)

// Reply length band. Anything shorter reads as a glitch; anything
// longer is the model rambling.
const (
	minReplyLen = 10
	maxReplyLen = 550
)

var ErrInvalidReply = errors.New("invalid reply")

// denylist is internal-reasoning vocabulary that must never reach the
// vendor. Matched case-insensitively as substrings.
var denylist = []string{
	"utility",
	"threshold",
	"algorithm",
	"fallback",
	"batna",
	"reservation price",
	"walk-away point",
	"scoring",
	"as an ai",
	"language model",
	"system prompt",
	"internal",
}

// Validate checks a generated reply against the rules for its intent.
// COUNTER_DIRECT must state the exact counter price and terms; ACCEPT
// must state the exact accepted price.
func Validate(text string, data PromptData) error {
	trimmed := strings.TrimSpace(text)
	// Length is measured in characters, not bytes.
	length := utf8.RuneCountInString(trimmed)
	if length < minReplyLen {
		return fmt.Errorf("%w: too short (%d chars)", ErrInvalidReply, length)
	}
	if length > maxReplyLen {
		return fmt.Errorf("%w: too long (%d chars)", ErrInvalidReply, length)
	}

	lower := strings.ToLower(trimmed)
	for _, word := range denylist {
		if strings.Contains(lower, word) {
			return fmt.Errorf("%w: contains internal vocabulary %q", ErrInvalidReply, word)
		}
	}

	switch data.Intent {
	case conversation.IntentCounterDirect:
		if data.Counter == nil || !data.Counter.HasPrice() {
			return fmt.Errorf("%w: counter intent without a counter-offer", ErrInvalidReply)
		}
		if !strings.Contains(trimmed, offer.FormatPrice(data.Counter.Price())) {
			return fmt.Errorf("%w: counter price missing from reply", ErrInvalidReply)
		}
		if data.Counter.HasTerms() && !strings.Contains(trimmed, data.Counter.Terms()) {
			return fmt.Errorf("%w: counter terms missing from reply", ErrInvalidReply)
		}
	case conversation.IntentAccept:
		if data.AcceptedOffer == nil || !data.AcceptedOffer.HasPrice() {
			return fmt.Errorf("%w: accept intent without an accepted price", ErrInvalidReply)
		}
		if !strings.Contains(trimmed, offer.FormatPrice(data.AcceptedOffer.Price())) {
			return fmt.Errorf("%w: accepted price missing from reply", ErrInvalidReply)
		}
	}
	return nil
}
