package cards

import (
	"context"
	"strings"
	"testing"
)

// fakeStore resolves by exact or prefix name match over a fixed list.
type fakeStore struct {
	cards []*Card
	gets  int
}

func (s *fakeStore) GetCard(_ context.Context, id string) (*Card, error) {
	s.gets++
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SearchByName(_ context.Context, prefix string, limit int) ([]*Card, error) {
	var matches []*Card
	for _, c := range s.cards {
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(prefix)) {
			matches = append(matches, c)
		}
	}
	// Shortest name first, mirroring the repository's ordering.
	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if len(matches[j].Name) < len(matches[i].Name) {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func testStore() *fakeStore {
	return &fakeStore{cards: []*Card{
		{ID: "10001", Name: "Goblin"},
		{ID: "10002", Name: "Goblin Mage"},
		{ID: "10003", Name: "Fairy Whisperer"},
	}}
}

func TestResolveNumericID(t *testing.T) {
	r := NewResolver(testStore())
	id, err := r.Resolve(context.Background(), "10002")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "10002" {
		t.Errorf("Resolve = %q, want 10002", id)
	}
}

func TestResolveUnknownNumericID(t *testing.T) {
	r := NewResolver(testStore())
	id, err := r.Resolve(context.Background(), "99999")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "" {
		t.Errorf("Resolve = %q, want empty for unknown id", id)
	}
}

func TestResolveNamePrefersShortestMatch(t *testing.T) {
	r := NewResolver(testStore())
	id, err := r.Resolve(context.Background(), "Goblin")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != "10001" {
		t.Errorf("Resolve = %q, want 10001 (shortest matching name)", id)
	}
}

func TestResolveCaches(t *testing.T) {
	store := testStore()
	r := NewResolver(store)
	ctx := context.Background()

	r.Resolve(ctx, "10001")
	r.Resolve(ctx, "10001")

	if store.gets != 1 {
		t.Errorf("store lookups = %d, want 1 (second hit served from cache)", store.gets)
	}
}

func TestResolveDeck(t *testing.T) {
	r := NewResolver(testStore())
	ids, unresolved, err := r.ResolveDeck(context.Background(), " Goblin , Unknown Card, 10003 ,")
	if err != nil {
		t.Fatalf("ResolveDeck failed: %v", err)
	}

	if len(ids) != 2 || ids[0] != "10001" || ids[1] != "10003" {
		t.Errorf("ids = %v, want [10001 10003]", ids)
	}
	if len(unresolved) != 1 || unresolved[0] != "Unknown Card" {
		t.Errorf("unresolved = %v, want [Unknown Card]", unresolved)
	}
}

func TestSuggestionsMinLength(t *testing.T) {
	r := NewResolver(testStore())
	matches, err := r.Suggestions(context.Background(), "G", 5)
	if err != nil {
		t.Fatalf("Suggestions failed: %v", err)
	}
	if matches != nil {
		t.Errorf("Suggestions = %v, want nil for single-character query", matches)
	}

	matches, err = r.Suggestions(context.Background(), "Gob", 5)
	if err != nil {
		t.Fatalf("Suggestions failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Suggestions = %v, want both goblins", matches)
	}
}
