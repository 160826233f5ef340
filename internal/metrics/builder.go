package metrics

import (
	"context"
	"fmt"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// MetricsStore persists computed card metrics.
type MetricsStore interface {
	// ListAll returns every card in the store.
	ListAll(ctx context.Context) ([]*cards.Card, error)

	// SaveMetrics upserts the metrics row for a card.
	SaveMetrics(ctx context.Context, cardID string, m cards.Metrics) error
}

// Builder recomputes metrics for every stored card. Run after a card
// data import so ratings stay in sync with card attributes.
type Builder struct {
	store MetricsStore
}

// NewBuilder creates a metrics builder over the given store.
func NewBuilder(store MetricsStore) *Builder {
	return &Builder{store: store}
}

// BuildAll rates every card and persists the result, returning the
// number of cards processed.
func (b *Builder) BuildAll(ctx context.Context) (int, error) {
	all, err := b.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load cards: %w", err)
	}

	for _, card := range all {
		m := Rate(card)
		if err := b.store.SaveMetrics(ctx, card.ID, m); err != nil {
			return 0, fmt.Errorf("failed to save metrics for %s: %w", card.ID, err)
		}
	}

	return len(all), nil
}
