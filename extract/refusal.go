package extract

import (
	"regexp"
	"strings"
)

// RefusalType classifies a vendor message that declines to engage with the
// current ask. RefusalNone means the message is not a refusal.
type RefusalType string

const (
	RefusalNone          RefusalType = ""
	RefusalNo            RefusalType = "NO"
	RefusalLater         RefusalType = "LATER"
	RefusalAlreadyShared RefusalType = "ALREADY_SHARED"
	RefusalConfused      RefusalType = "CONFUSED"
)

// refusalRules are evaluated in order; the first matching rule wins.
// Phrases are matched as substrings of the lowercased message.
var refusalRules = []struct {
	typ     RefusalType
	phrases []string
}{
	{RefusalNo, []string{
		"not interested",
		"no deal",
		"can't do that",
		"cannot do that",
		"can't go lower",
		"cannot go lower",
		"won't work",
		"not going to happen",
		"no discount",
		"not possible",
		"have to decline",
		"that's our final",
		"this is our final",
	}},
	{RefusalLater, []string{
		"maybe later",
		"not right now",
		"get back to you",
		"follow up later",
		"talk later",
		"next week",
		"next month",
		"circle back",
		"another time",
		"check with my manager",
	}},
	{RefusalAlreadyShared, []string{
		"already told",
		"already shared",
		"already sent",
		"already gave",
		"already quoted",
		"as i said",
		"as i mentioned",
		"as mentioned before",
	}},
	{RefusalConfused, []string{
		"don't understand",
		"do not understand",
		"what do you mean",
		"not sure what you",
		"doesn't make sense",
		"makes no sense",
		"confused",
		"unclear",
	}},
}

// wholeMessageNo matches bare-refusal messages such as "No." or "nope".
var wholeMessageNo = regexp.MustCompile(`(?i)^\s*(no|nope|no thanks|no thank you)\s*[.!]*\s*$`)

// Refusal classifies a vendor message as a refusal type, or RefusalNone when
// nothing matches. A detected refusal short-circuits offer processing for the
// turn, so rules are kept narrow to avoid swallowing real offers.
func Refusal(text string) RefusalType {
	if wholeMessageNo.MatchString(text) {
		return RefusalNo
	}

	lower := strings.ToLower(text)
	for _, rule := range refusalRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				return rule.typ
			}
		}
	}
	return RefusalNone
}

var greetingRule = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|greetings|good\s+(morning|afternoon|evening))\b`)

// IsGreeting reports whether a message is a short opening pleasantry with no
// numeric content worth extracting.
func IsGreeting(text string) bool {
	if len(text) > 80 || strings.ContainsAny(text, "0123456789") {
		return false
	}
	return greetingRule.MatchString(text)
}
