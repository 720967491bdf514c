// Package extract parses free-text vendor messages into structured signals:
// offers (unit price, payment terms), refusal classifications, and greetings.
// All extraction is ordered pattern matching: the first rule to match a
// field wins, and no match is a valid outcome, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/accordo-ai/accordo/core/offer"
)

// Result is an extracted offer plus flags for which fields were actually
// found in the text (as opposed to merely being nil).
type Result struct {
	Offer      offer.Offer
	FoundPrice bool
	FoundTerms bool
}

// Price rules, evaluated in order. Each rule's first capture group is the
// numeric amount; thousands separators are stripped before parsing.
var priceRules = []*regexp.Regexp{
	// Currency-prefixed amounts: "$105", "$ 1,250.50", "€97.5".
	regexp.MustCompile(`[$€£]\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)`),
	// Currency-code prefixed: "USD 105", "eur 1,250".
	regexp.MustCompile(`(?i)\b(?:usd|eur|gbp)\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)\b`),
	// Bare amounts tied to unit language: "105 per unit", "97.50 each".
	regexp.MustCompile(`(?i)\b([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)\s*(?:per\s+unit|each|a\s+unit|/\s*unit)`),
}

// Payment-terms rules, evaluated in order.
var (
	netTermsRule  = regexp.MustCompile(`(?i)\bnet[\s-]?([0-9]{1,3})\b`)
	dayTermsRule  = regexp.MustCompile(`(?i)\b([0-9]{1,3})\s+days?\s+(?:terms|payment|to\s+pay)\b`)
	onReceiptRule = regexp.MustCompile(`(?i)\b(?:due|payable)\s+(?:up)?on\s+receipt\b`)
	eomRule       = regexp.MustCompile(`(?i)\bend\s+of\s+month\b|\beom\b`)
)

// Offer parses a vendor message into a structured offer. Unmatched fields
// stay nil; a message with no offer at all yields an empty Result.
func Offer(text string) Result {
	var res Result

	for _, rule := range priceRules {
		m := rule.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		res.Offer.UnitPrice = &price
		res.FoundPrice = true
		break
	}

	if terms, ok := paymentTerms(text); ok {
		res.Offer.PaymentTerms = &terms
		res.FoundTerms = true
	}

	return res
}

func paymentTerms(text string) (string, bool) {
	if m := netTermsRule.FindStringSubmatch(text); m != nil {
		return "Net " + m[1], true
	}
	if m := dayTermsRule.FindStringSubmatch(text); m != nil {
		return "Net " + m[1], true
	}
	if onReceiptRule.MatchString(text) {
		return "Due on receipt", true
	}
	if eomRule.MatchString(text) {
		return "Net EOM", true
	}
	return "", false
}
