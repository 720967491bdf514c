package extract_test

import (
	"testing"

	"github.com/accordo-ai/accordo/extract"
)

func TestOffer_PriceAndTerms(t *testing.T) {
	res := extract.Offer("I can offer $105 per unit with Net 45 payment terms")

	if !res.FoundPrice {
		t.Fatal("price not found")
	}
	if res.Offer.Price() != 105 {
		t.Errorf("got price %v, want 105", res.Offer.Price())
	}
	if !res.FoundTerms {
		t.Fatal("terms not found")
	}
	if res.Offer.Terms() != "Net 45" {
		t.Errorf("got terms %q, want %q", res.Offer.Terms(), "Net 45")
	}
}

func TestOffer_PriceFormats(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"we can do $97", 97},
		{"best I can do is $1,250 per unit", 1250},
		{"$ 95.50 works for us", 95.5},
		{"USD 2,400 final", 2400},
		{"how about 89.99 each", 89.99},
		{"price is €14,000.25", 14000.25},
	}

	for _, tc := range cases {
		res := extract.Offer(tc.text)
		if !res.FoundPrice {
			t.Errorf("no price found in %q", tc.text)
			continue
		}
		if res.Offer.Price() != tc.want {
			t.Errorf("text %q: got price %v, want %v", tc.text, res.Offer.Price(), tc.want)
		}
	}
}

func TestOffer_FirstRuleWins(t *testing.T) {
	// Currency-prefixed rule outranks the per-unit rule.
	res := extract.Offer("list is $120 but I could consider 110 per unit")
	if res.Offer.Price() != 120 {
		t.Errorf("got price %v, want 120 from the currency-prefixed rule", res.Offer.Price())
	}
}

func TestOffer_TermsVariants(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Net 30 as usual", "Net 30"},
		{"net-60 would be required", "Net 60"},
		{"we need 45 days payment", "Net 45"},
		{"invoice due on receipt", "Due on receipt"},
		{"payable upon receipt please", "Due on receipt"},
		{"settle by end of month", "Net EOM"},
	}

	for _, tc := range cases {
		res := extract.Offer(tc.text)
		if !res.FoundTerms {
			t.Errorf("no terms found in %q", tc.text)
			continue
		}
		if res.Offer.Terms() != tc.want {
			t.Errorf("text %q: got terms %q, want %q", tc.text, res.Offer.Terms(), tc.want)
		}
	}
}

func TestOffer_PartialAndAbsent(t *testing.T) {
	res := extract.Offer("we could stretch to Net 60 if needed")
	if res.FoundPrice {
		t.Error("found a price where none exists")
	}
	if !res.FoundTerms || res.Offer.Terms() != "Net 60" {
		t.Errorf("terms-only message not extracted: %+v", res)
	}

	res = extract.Offer("thanks for reaching out, let me check with the team")
	if res.FoundPrice || res.FoundTerms {
		t.Errorf("extracted fields from offer-free text: %+v", res)
	}
	if !res.Offer.IsEmpty() {
		t.Error("offer should be empty for offer-free text")
	}
}
