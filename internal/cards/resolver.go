package cards

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

var numericID = regexp.MustCompile(`^\d+$`)

// Resolver maps free-form user input (a card name or a numeric id) to
// a canonical card id. Resolution failures are surfaced as an empty
// id, not an error, so deck parsing can skip unresolved entries.
type Resolver struct {
	store Store

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{
		store: store,
		cache: make(map[string]string),
	}
}

// Resolve returns the card id for the given name or id, or "" when no
// card matches. Exact name matches win over prefix matches; among
// prefix matches the shortest name wins.
func (r *Resolver) Resolve(ctx context.Context, nameOrID string) (string, error) {
	query := strings.TrimSpace(nameOrID)
	if query == "" {
		return "", nil
	}

	r.mu.Lock()
	if id, ok := r.cache[query]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	// Digits-only input is treated as a card id.
	if numericID.MatchString(query) {
		card, err := r.store.GetCard(ctx, query)
		if err != nil {
			return "", err
		}
		if card == nil {
			return "", nil
		}
		r.remember(query, card.ID)
		return card.ID, nil
	}

	matches, err := r.store.SearchByName(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	r.remember(query, matches[0].ID)
	return matches[0].ID, nil
}

// ResolveDeck resolves a comma-separated deck list. Unresolved names
// are returned separately so callers can report them; they do not
// abort the batch.
func (r *Resolver) ResolveDeck(ctx context.Context, deckInput string) (ids []string, unresolved []string, err error) {
	for _, name := range strings.Split(deckInput, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if id == "" {
			unresolved = append(unresolved, name)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unresolved, nil
}

// Suggestions returns up to limit cards matching the query prefix,
// for typeahead completion. Queries shorter than two characters
// return nothing.
func (r *Resolver) Suggestions(ctx context.Context, query string, limit int) ([]*Card, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}
	return r.store.SearchByName(ctx, query, limit)
}

func (r *Resolver) remember(query, id string) {
	r.mu.Lock()
	r.cache[query] = id
	r.mu.Unlock()
}
