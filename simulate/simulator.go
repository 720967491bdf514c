package simulate

import (
	"fmt"

	"github.com/accordo-ai/accordo/core/offer"
)

// Vendor is a deterministic simulated counterparty. It opens at its
// opening price and steps toward the policy floor each round.
type Vendor struct {
	policy  VendorPolicy
	opening float64
	terms   string
	round   int
	last    float64
	quoted  []float64
}

// NewVendor builds a vendor that opens at openingPrice with the given
// payment terms.
func NewVendor(policy VendorPolicy, openingPrice float64, terms string) *Vendor {
	return &Vendor{policy: policy, opening: openingPrice, terms: terms, last: openingPrice}
}

// NextOffer advances one round and returns the vendor's offer. After
// the policy's round limit the vendor reiterates its last position.
func (v *Vendor) NextOffer() offer.Offer {
	v.round++
	if v.round == 1 || v.round > v.policy.MaxRounds {
		v.quoted = append(v.quoted, v.last)
		return offer.New(v.last, v.terms)
	}

	next := v.last - v.policy.ConcessionStep
	if next < v.policy.MinPrice {
		next = v.policy.MinPrice
	}
	v.last = next
	v.quoted = append(v.quoted, next)
	return offer.New(next, v.terms)
}

// QuotedPrices returns every price the vendor has offered so far, in
// order. Scenario detection runs over this history.
func (v *Vendor) QuotedPrices() []float64 {
	out := make([]float64, len(v.quoted))
	copy(out, v.quoted)
	return out
}

// Utterance renders an offer as vendor prose. The phrasing matches
// what the offer extractor recognizes, so self-play exercises the same
// path as live traffic.
func (v *Vendor) Utterance(o offer.Offer) string {
	switch {
	case o.HasPrice() && o.HasTerms():
		return fmt.Sprintf("We can do %s per unit with %s payment terms.", offer.FormatPrice(o.Price()), o.Terms())
	case o.HasPrice():
		return fmt.Sprintf("Our best price is %s per unit.", offer.FormatPrice(o.Price()))
	case o.HasTerms():
		return fmt.Sprintf("We can offer %s payment terms.", o.Terms())
	default:
		return "Let us know what you need and we can talk numbers."
	}
}
