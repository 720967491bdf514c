package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/negotiate"
)

// DealStatus mirrors how the negotiation ended, or that it has not.
type DealStatus string

const (
	StatusNegotiating DealStatus = "NEGOTIATING"
	StatusAccepted    DealStatus = "ACCEPTED"
	StatusWalkedAway  DealStatus = "WALKED_AWAY"
	StatusEscalated   DealStatus = "ESCALATED"
)

// DealMode controls how much decision metadata the API exposes per
// turn. INSIGHTS returns scores and decisions alongside each reply;
// CONVERSATION returns reply text only.
type DealMode string

const (
	ModeInsights     DealMode = "INSIGHTS"
	ModeConversation DealMode = "CONVERSATION"
)

// Deal is one negotiation with one vendor.
type Deal struct {
	ID        uuid.UUID               `json:"id"`
	Status    DealStatus              `json:"status"`
	Mode      DealMode                `json:"mode"`
	Round     int                     `json:"round"`
	Config    offer.NegotiationConfig `json:"config"`
	State     conversation.State      `json:"state"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Terminal reports whether the deal can take no further turns.
func (d *Deal) Terminal() bool {
	return d.Status != StatusNegotiating
}

// MessageRole identifies who a stored message came from.
type MessageRole string

const (
	RoleVendor    MessageRole = "VENDOR"
	RoleAssistant MessageRole = "ASSISTANT"
	RoleSystem    MessageRole = "SYSTEM"
)

// Message is one turn of the conversation. ExtractedOffer is set on
// vendor messages where extraction found anything; Decision and
// UtilityScore are set on assistant messages produced from a scored
// offer. IDs are ULIDs, so lexicographic order is creation order.
type Message struct {
	ID             string              `json:"id"`
	DealID         uuid.UUID           `json:"deal_id"`
	Role           MessageRole         `json:"role"`
	Content        string              `json:"content"`
	ExtractedOffer *offer.Offer        `json:"extracted_offer,omitempty"`
	Decision       *negotiate.Decision `json:"decision,omitempty"`
	UtilityScore   *float64            `json:"utility_score,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}
