// Package store persists deals and their conversation history. Both
// backends guarantee that a turn's messages and the updated deal land
// together or not at all.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrDealNotFound = errors.New("deal not found")

// Store is the persistence boundary for the negotiation engine.
type Store interface {
	// CreateDeal persists a new deal.
	CreateDeal(ctx context.Context, deal *Deal) error

	// GetDeal loads a deal by id, or ErrDealNotFound.
	GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error)

	// SaveTurn atomically writes the updated deal together with the
	// turn's messages. Partial writes are not a permitted outcome.
	SaveTurn(ctx context.Context, deal *Deal, msgs ...*Message) error

	// ListMessages returns a deal's messages in creation order.
	ListMessages(ctx context.Context, dealID uuid.UUID) ([]*Message, error)

	Close() error
}
