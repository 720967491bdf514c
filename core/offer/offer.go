// Package offer defines the structured offer and negotiation configuration
// types shared by every negotiation subsystem. Offers are partial by design:
// each field is independently nullable, and a message that carries only a
// price (or only payment terms) is still a valid offer.
package offer

import "fmt"

// Offer is a structured vendor or assistant position. Nil fields mean the
// field was never stated, not that it was withdrawn.
type Offer struct {
	UnitPrice    *float64 `json:"unit_price,omitempty"`
	PaymentTerms *string  `json:"payment_terms,omitempty"`
}

// New builds an Offer with both fields populated.
func New(unitPrice float64, paymentTerms string) Offer {
	return Offer{UnitPrice: &unitPrice, PaymentTerms: &paymentTerms}
}

// WithPrice builds a price-only Offer.
func WithPrice(unitPrice float64) Offer {
	return Offer{UnitPrice: &unitPrice}
}

// WithTerms builds a terms-only Offer.
func WithTerms(paymentTerms string) Offer {
	return Offer{PaymentTerms: &paymentTerms}
}

// HasPrice reports whether a unit price is known.
func (o Offer) HasPrice() bool {
	return o.UnitPrice != nil
}

// HasTerms reports whether payment terms are known.
func (o Offer) HasTerms() bool {
	return o.PaymentTerms != nil
}

// IsEmpty reports whether no field is known.
func (o Offer) IsEmpty() bool {
	return o.UnitPrice == nil && o.PaymentTerms == nil
}

// Price returns the unit price, or 0 when unknown.
func (o Offer) Price() float64 {
	if o.UnitPrice == nil {
		return 0
	}
	return *o.UnitPrice
}

// Terms returns the payment terms, or "" when unknown.
func (o Offer) Terms() string {
	if o.PaymentTerms == nil {
		return ""
	}
	return *o.PaymentTerms
}

// Merge combines o with newer field-by-field. Non-nil fields from newer
// overwrite, nil fields never clear previously known values. Neither input
// is modified.
func Merge(o, newer Offer) Offer {
	merged := o.Clone()
	if newer.UnitPrice != nil {
		p := *newer.UnitPrice
		merged.UnitPrice = &p
	}
	if newer.PaymentTerms != nil {
		t := *newer.PaymentTerms
		merged.PaymentTerms = &t
	}
	return merged
}

// Clone returns an independent copy of the Offer.
func (o Offer) Clone() Offer {
	var clone Offer
	if o.UnitPrice != nil {
		p := *o.UnitPrice
		clone.UnitPrice = &p
	}
	if o.PaymentTerms != nil {
		t := *o.PaymentTerms
		clone.PaymentTerms = &t
	}
	return clone
}

// String renders the offer for logs and vendor-facing templates.
// Unknown fields render as "?".
func (o Offer) String() string {
	price := "?"
	if o.UnitPrice != nil {
		price = FormatPrice(*o.UnitPrice)
	}
	terms := "?"
	if o.PaymentTerms != nil {
		terms = *o.PaymentTerms
	}
	return fmt.Sprintf("{%s, %s}", price, terms)
}

// FormatPrice renders a unit price the way it appears in replies, e.g.
// "$95" or "$95.50". Whole amounts drop the cents so that generated text
// and validation agree on a single canonical form.
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("$%d", int64(price))
	}
	return fmt.Sprintf("$%.2f", price)
}
