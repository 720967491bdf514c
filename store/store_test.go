package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accordo-ai/accordo/conversation"
	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/negotiate"
	"github.com/accordo-ai/accordo/store"
)

func testDeal(t *testing.T) *store.Deal {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	return &store.Deal{
		ID:     id,
		Status: store.StatusNegotiating,
		Mode:   store.ModeInsights,
		Config: offer.NegotiationConfig{
			Price:      offer.PriceParams{Target: 100, Min: 85, Max: 120},
			Terms:      offer.TermsParams{Ideal: "Net 30", Acceptable: []string{"Net 30", "Net 45"}},
			Thresholds: offer.Thresholds{AcceptAt: 75, WalkAwayBelow: 30},
			MaxRounds:  10,
		},
		State:     conversation.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func openStores(t *testing.T) map[string]store.Store {
	t.Helper()

	sqlite, err := store.OpenSQLite(filepath.Join(t.TempDir(), "accordo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]store.Store{
		"sqlite": sqlite,
		"memory": store.NewMemoryStore(),
	}
}

func TestStore_CreateAndGetDeal(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			deal := testDeal(t)
			require.NoError(t, s.CreateDeal(ctx, deal))

			got, err := s.GetDeal(ctx, deal.ID)
			require.NoError(t, err)
			assert.Equal(t, deal.ID, got.ID)
			assert.Equal(t, store.StatusNegotiating, got.Status)
			assert.Equal(t, deal.Config, got.Config)
			assert.Equal(t, conversation.PhaseWaitingForOffer, got.State.Phase)
		})
	}
}

func TestStore_GetDealNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			missing, err := uuid.NewV7()
			require.NoError(t, err)

			_, err = s.GetDeal(ctx, missing)
			assert.ErrorIs(t, err, store.ErrDealNotFound)
		})
	}
}

func TestStore_SaveTurnRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			deal := testDeal(t)
			require.NoError(t, s.CreateDeal(ctx, deal))

			vendorOffer := offer.New(105, "Net 45")
			score := 45.0
			counter := offer.New(95, "Net 30")
			decision := &negotiate.Decision{
				Action:  negotiate.ActionCounter,
				Utility: score,
				Counter: &counter,
			}

			deal.Round = 1
			deal.State.Phase = conversation.PhaseNegotiating
			deal.State.LastVendorOffer = vendorOffer
			deal.UpdatedAt = time.Now().UTC().Truncate(time.Second)

			now := time.Now().UTC().Truncate(time.Second)
			vendorMsg := &store.Message{
				ID:             ulid.Make().String(),
				DealID:         deal.ID,
				Role:           store.RoleVendor,
				Content:        "We can do $105 per unit with Net 45.",
				ExtractedOffer: &vendorOffer,
				CreatedAt:      now,
			}
			assistantMsg := &store.Message{
				ID:           ulid.Make().String(),
				DealID:       deal.ID,
				Role:         store.RoleAssistant,
				Content:      "Could you do $95 per unit with Net 30 payment terms?",
				Decision:     decision,
				UtilityScore: &score,
				CreatedAt:    now,
			}

			require.NoError(t, s.SaveTurn(ctx, deal, vendorMsg, assistantMsg))

			got, err := s.GetDeal(ctx, deal.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Round)
			assert.Equal(t, conversation.PhaseNegotiating, got.State.Phase)
			assert.Equal(t, 105.0, got.State.LastVendorOffer.Price())

			msgs, err := s.ListMessages(ctx, deal.ID)
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, store.RoleVendor, msgs[0].Role)
			require.NotNil(t, msgs[0].ExtractedOffer)
			assert.Equal(t, 105.0, msgs[0].ExtractedOffer.Price())
			assert.Nil(t, msgs[0].Decision)

			assert.Equal(t, store.RoleAssistant, msgs[1].Role)
			require.NotNil(t, msgs[1].Decision)
			assert.Equal(t, negotiate.ActionCounter, msgs[1].Decision.Action)
			require.NotNil(t, msgs[1].UtilityScore)
			assert.Equal(t, 45.0, *msgs[1].UtilityScore)
		})
	}
}

func TestStore_SaveTurnUnknownDeal(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			deal := testDeal(t)
			err := s.SaveTurn(ctx, deal)
			assert.ErrorIs(t, err, store.ErrDealNotFound)
		})
	}
}

func TestStore_MessagesOrderedByID(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			deal := testDeal(t)
			require.NoError(t, s.CreateDeal(ctx, deal))

			var ids []string
			for i := 0; i < 5; i++ {
				msg := &store.Message{
					ID:        ulid.Make().String(),
					DealID:    deal.ID,
					Role:      store.RoleVendor,
					Content:   "round trip message body here",
					CreatedAt: time.Now().UTC(),
				}
				ids = append(ids, msg.ID)
				require.NoError(t, s.SaveTurn(ctx, deal, msg))
			}

			msgs, err := s.ListMessages(ctx, deal.ID)
			require.NoError(t, err)
			require.Len(t, msgs, len(ids))
			for i, msg := range msgs {
				assert.Equal(t, ids[i], msg.ID)
			}
		})
	}
}
