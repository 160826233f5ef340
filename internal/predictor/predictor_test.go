package predictor

import (
	"context"
	"fmt"
	"testing"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

type mapSource map[string]*cards.Card

func (s mapSource) GetCard(_ context.Context, id string) (*cards.Card, error) {
	return s[id], nil
}

func TestPredictEmptyDeck(t *testing.T) {
	prediction, err := New(mapSource{}).Predict(context.Background(), nil)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if prediction.WinRate != 50.0 {
		t.Errorf("WinRate = %v, want 50.0 baseline", prediction.WinRate)
	}
	if prediction.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", prediction.Confidence)
	}
}

func TestPredictBounds(t *testing.T) {
	src := mapSource{}
	var ids []string
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("c%d", i)
		cost := i%6 + 1
		src[id] = &cards.Card{
			ID:      id,
			Craft:   cards.CraftSword,
			Cost:    cost,
			Type:    cards.TypeFollower,
			Roles:   []string{cards.RoleRemoval, cards.RoleDraw},
			Metrics: &cards.Metrics{BaseRating: 90},
		}
		ids = append(ids, id)
	}

	prediction, err := New(src).Predict(context.Background(), ids)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if prediction.WinRate < 25 || prediction.WinRate > 85 {
		t.Errorf("WinRate = %v, want within [25, 85]", prediction.WinRate)
	}
	if prediction.Confidence != 100 {
		t.Errorf("Confidence = %v, want cap at 100 for a full deck", prediction.Confidence)
	}
	for name, value := range prediction.Factors {
		if value < 0 || value > 1 {
			t.Errorf("factor %s = %v, want within [0, 1]", name, value)
		}
	}
}

func TestPredictConfidenceScalesWithDeckSize(t *testing.T) {
	src := mapSource{
		"1": {ID: "1", Cost: 2, Type: cards.TypeFollower},
		"2": {ID: "2", Cost: 3, Type: cards.TypeFollower},
	}

	prediction, err := New(src).Predict(context.Background(), []string{"1", "2"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if prediction.Confidence != 8 {
		t.Errorf("Confidence = %v, want 8 for two cards", prediction.Confidence)
	}
}

func TestPredictWeakDeckGetsRecommendations(t *testing.T) {
	src := mapSource{}
	var ids []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("w%d", i)
		src[id] = &cards.Card{
			ID:      id,
			Cost:    7,
			Type:    cards.TypeFollower,
			Metrics: &cards.Metrics{BaseRating: 30},
		}
		ids = append(ids, id)
	}

	prediction, err := New(src).Predict(context.Background(), ids)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(prediction.Recommendations) == 0 {
		t.Error("want improvement recommendations for a weak deck")
	}
	if prediction.WinRate >= 50 {
		t.Errorf("WinRate = %v, want below baseline for a weak deck", prediction.WinRate)
	}
}
