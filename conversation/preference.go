package conversation

import "github.com/accordo-ai/accordo/core/offer"

// Movement thresholds for the preference heuristic. A vendor conceding
// at least one percent per priced offer on average is treated as
// flexible on price.
const (
	priceFlexThreshold  = 0.01
	minOffersForSignal  = 2
	minOffersForVerdict = 4
)

// DetectPreference inspects the vendor's own offer history, oldest
// first, and infers which axis they move on. The second return value
// reports whether the signal is confident enough to record; callers
// treat a recorded preference as sticky.
func DetectPreference(offers []offer.Offer, cfg offer.NegotiationConfig) (Preference, bool) {
	if len(offers) < minOffersForSignal {
		return "", false
	}

	priceFlexible := meanConcession(offers) >= priceFlexThreshold
	termsFlexible := termsMovedIntoAcceptable(offers, cfg)

	switch {
	case priceFlexible && !termsFlexible:
		return PreferencePrice, true
	case termsFlexible && !priceFlexible:
		return PreferenceTerms, true
	case len(offers) >= minOffersForVerdict:
		// Enough history with no single clear axis.
		return PreferenceNeither, true
	default:
		return "", false
	}
}

// meanConcession averages the relative price drop across consecutive
// priced offers. Price increases count as zero movement.
func meanConcession(offers []offer.Offer) float64 {
	var total float64
	var steps int
	prev := -1.0
	for _, o := range offers {
		if !o.HasPrice() {
			continue
		}
		p := o.Price()
		if prev > 0 {
			steps++
			if p < prev {
				total += (prev - p) / prev
			}
		}
		prev = p
	}
	if steps == 0 {
		return 0
	}
	return total / float64(steps)
}

// termsMovedIntoAcceptable reports whether the vendor started outside
// the acceptable set and later offered a term inside it.
func termsMovedIntoAcceptable(offers []offer.Offer, cfg offer.NegotiationConfig) bool {
	sawUnacceptable := false
	for _, o := range offers {
		if !o.HasTerms() {
			continue
		}
		if cfg.TermAcceptable(o.Terms()) {
			if sawUnacceptable {
				return true
			}
		} else {
			sawUnacceptable = true
		}
	}
	return false
}
