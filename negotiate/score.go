// Package negotiate contains the pure decision core: utility scoring of
// offers and the accept/counter/walk-away/escalate algorithm. Everything in
// this package is deterministic: identical inputs always produce identical
// outputs, which the engine's reproducibility guarantees depend on.
package negotiate

import (
	"strings"

	"github.com/accordo-ai/accordo/core/offer"
)

// Component weights and credits for the utility score. Price dominates;
// terms break ties. An acceptable-but-not-ideal term earns half credit.
const (
	priceWeight        = 0.7
	termsWeight        = 0.3
	partialTermsCredit = 0.5
)

// Score maps an offer to a 0-100 utility under the given configuration.
// Absent fields contribute zero to their component; they never null-propagate
// into the total.
func Score(o offer.Offer, cfg offer.NegotiationConfig) float64 {
	total := priceWeight*priceUtility(o, cfg) + termsWeight*termsUtility(o, cfg)
	return clamp(total, 0, 100)
}

// priceUtility interpolates linearly between Max (utility 0) and Min
// (utility 100). Lower price is better.
func priceUtility(o offer.Offer, cfg offer.NegotiationConfig) float64 {
	if !o.HasPrice() {
		return 0
	}
	price := o.Price()
	span := cfg.Price.Max - cfg.Price.Min
	if span <= 0 {
		return 0
	}
	return clamp((cfg.Price.Max-price)/span*100, 0, 100)
}

// termsUtility gives the ideal term full credit, any other acceptable term
// partial credit, and everything else zero.
func termsUtility(o offer.Offer, cfg offer.NegotiationConfig) float64 {
	if !o.HasTerms() {
		return 0
	}
	terms := o.Terms()
	if strings.EqualFold(terms, cfg.Terms.Ideal) {
		return 100
	}
	if cfg.TermAcceptable(terms) {
		return 100 * partialTermsCredit
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
