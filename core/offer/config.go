package offer

import (
	"fmt"
	"strings"
)

// PriceParams bounds the price dimension of a negotiation. Target is the
// buyer's goal, Min the best credible price, Max the worst price with any
// utility at all.
type PriceParams struct {
	Target float64 `json:"target"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TermsParams bounds the payment-terms dimension. Ideal earns full terms
// credit, anything else in Acceptable earns partial credit.
type TermsParams struct {
	Ideal      string   `json:"ideal"`
	Acceptable []string `json:"acceptable"`
}

// Thresholds are the utility cut points for the decision algorithm.
// AcceptAt is inclusive, WalkAwayBelow is strict.
type Thresholds struct {
	AcceptAt      float64 `json:"accept_at"`
	WalkAwayBelow float64 `json:"walk_away_below"`
}

// NegotiationConfig is the full parameter set in force for one deal.
// Derived once when the deal is created and immutable afterwards.
type NegotiationConfig struct {
	Price      PriceParams `json:"price_params"`
	Terms      TermsParams `json:"terms_params"`
	Thresholds Thresholds  `json:"thresholds"`
	MaxRounds  int         `json:"max_rounds"`
}

// Defaults applied by FromRequisition for missing source fields.
const (
	DefaultAcceptAt      = 75.0
	DefaultWalkAwayBelow = 30.0
	DefaultMaxRounds     = 10
	DefaultIdealTerms    = "Net 30"

	defaultDiscountCeiling = 0.15
	defaultMaxMarkup       = 0.20
)

// DefaultAcceptableTerms is the payment-terms set that earns partial credit
// when a requisition does not specify its own.
var DefaultAcceptableTerms = []string{"Net 30", "Net 45", "Net 60"}

// TermAcceptable reports whether term earns any terms credit under this
// configuration. Matching is case-insensitive on the normalized form.
func (c NegotiationConfig) TermAcceptable(term string) bool {
	if term == "" {
		return false
	}
	if strings.EqualFold(term, c.Terms.Ideal) {
		return true
	}
	for _, t := range c.Terms.Acceptable {
		if strings.EqualFold(term, t) {
			return true
		}
	}
	return false
}

// Validate checks internal consistency of the configuration.
func (c NegotiationConfig) Validate() error {
	if c.Price.Min <= 0 {
		return fmt.Errorf("price min must be positive, got %v", c.Price.Min)
	}
	if c.Price.Max <= c.Price.Min {
		return fmt.Errorf("price max (%v) must exceed min (%v)", c.Price.Max, c.Price.Min)
	}
	if c.Price.Target < c.Price.Min || c.Price.Target > c.Price.Max {
		return fmt.Errorf("price target (%v) must lie within [%v, %v]", c.Price.Target, c.Price.Min, c.Price.Max)
	}
	if c.Thresholds.AcceptAt <= c.Thresholds.WalkAwayBelow {
		return fmt.Errorf("accept threshold (%v) must exceed walk-away threshold (%v)",
			c.Thresholds.AcceptAt, c.Thresholds.WalkAwayBelow)
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive, got %d", c.MaxRounds)
	}
	return nil
}

// Requisition carries the purchasing fields a negotiation is derived from.
// Zero values mean the field was absent at the source.
type Requisition struct {
	TargetUnitPrice float64 `json:"target_unit_price"`
	DiscountCeiling float64 `json:"discount_ceiling"` // fraction of target, e.g. 0.15
	PaymentTerms    string  `json:"payment_terms"`
	RoundLimit      int     `json:"round_limit"`
}

// FromRequisition maps requisition fields to a NegotiationConfig, applying
// defaults for anything the source left blank. The mapping is pure: the same
// requisition always yields the same configuration.
func FromRequisition(req Requisition) (NegotiationConfig, error) {
	if req.TargetUnitPrice <= 0 {
		return NegotiationConfig{}, fmt.Errorf("requisition has no target unit price")
	}

	discount := req.DiscountCeiling
	if discount <= 0 || discount >= 1 {
		discount = defaultDiscountCeiling
	}

	ideal := req.PaymentTerms
	if ideal == "" {
		ideal = DefaultIdealTerms
	}

	rounds := req.RoundLimit
	if rounds <= 0 {
		rounds = DefaultMaxRounds
	}

	cfg := NegotiationConfig{
		Price: PriceParams{
			Target: req.TargetUnitPrice,
			Min:    req.TargetUnitPrice * (1 - discount),
			Max:    req.TargetUnitPrice * (1 + defaultMaxMarkup),
		},
		Terms: TermsParams{
			Ideal:      ideal,
			Acceptable: acceptableFor(ideal),
		},
		Thresholds: Thresholds{
			AcceptAt:      DefaultAcceptAt,
			WalkAwayBelow: DefaultWalkAwayBelow,
		},
		MaxRounds: rounds,
	}

	if err := cfg.Validate(); err != nil {
		return NegotiationConfig{}, fmt.Errorf("derived config invalid: %w", err)
	}
	return cfg, nil
}

// acceptableFor returns the acceptable-terms set for an ideal term. The
// default ladder is used unless the ideal falls outside it, in which case
// the ideal is prepended so it always earns credit.
func acceptableFor(ideal string) []string {
	for _, t := range DefaultAcceptableTerms {
		if strings.EqualFold(t, ideal) {
			return append([]string(nil), DefaultAcceptableTerms...)
		}
	}
	return append([]string{ideal}, DefaultAcceptableTerms...)
}
