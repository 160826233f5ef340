// Package learning tunes the advisor's factor weights from historical
// pick logs via ridge regression over feature differences.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Shun-123/shadowverse-2pick/internal/advisor"
)

// MinExamples is the smallest training set the optimizer accepts.
const MinExamples = 5

// ridgeLambda is the L2 regularization strength.
const ridgeLambda = 0.01

// PickLog is one recorded pick decision with its full score breakdown.
type PickLog struct {
	ID            int64
	SessionID     string
	PickIndex     int
	RerollsLeft   int
	Candidate1ID  string
	Candidate2ID  string
	RecommendedID string
	ChosenID      string
	Action        string
	ScoresJSON    string
	DeckSnapshot  string
	Timestamp     string
}

// LogStore supplies historical pick logs for training.
type LogStore interface {
	// LogsForTraining returns picks where the user made a recorded
	// choice and candidate scores were captured.
	LogsForTraining(ctx context.Context) ([]*PickLog, error)
}

// Example is one training row: the feature-wise difference between the
// chosen candidate and a non-chosen one.
type Example struct {
	Features map[string]float64
	// Agreement is whether the user's choice matched the advisor's
	// recommendation. Diagnostic only, not used by the regression.
	Agreement bool
}

// Result reports the outcome of a training run.
type Result struct {
	Success       bool               `json:"success"`
	Message       string             `json:"message"`
	DataCount     int                `json:"data_count"`
	AgreementRate float64            `json:"agreement_rate,omitempty"`
	WeightDeltas  map[string]float64 `json:"weight_changes,omitempty"`
}

// Trainer reads pick logs and writes updated weights.
type Trainer struct {
	logs    LogStore
	weights advisor.WeightStore
}

// NewTrainer creates a trainer over the given stores.
func NewTrainer(logs LogStore, weights advisor.WeightStore) *Trainer {
	return &Trainer{logs: logs, weights: weights}
}

// CollectTrainingData turns pick logs into feature-difference examples.
// Rows with malformed score JSON or fewer than two scored candidates are
// skipped, not fatal.
func (t *Trainer) CollectTrainingData(ctx context.Context) ([]*Example, error) {
	logs, err := t.logs.LogsForTraining(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pick logs: %w", err)
	}

	var examples []*Example
	for _, log := range logs {
		if log.ChosenID == "" || log.ScoresJSON == "" {
			continue
		}

		var scores []*advisor.CardScore
		if err := json.Unmarshal([]byte(log.ScoresJSON), &scores); err != nil {
			continue
		}
		if len(scores) < 2 {
			continue
		}

		var chosen *advisor.CardScore
		var others []*advisor.CardScore
		for _, s := range scores {
			if s.CardID == log.ChosenID && chosen == nil {
				chosen = s
			} else {
				others = append(others, s)
			}
		}
		if chosen == nil || len(others) == 0 {
			continue
		}

		for _, other := range others {
			diff := make(map[string]float64, len(advisor.Factors))
			for _, f := range advisor.Factors {
				diff[f] = chosen.Component(f) - other.Component(f)
			}
			examples = append(examples, &Example{
				Features:  diff,
				Agreement: log.ChosenID == log.RecommendedID,
			})
		}
	}
	return examples, nil
}

// OptimizeWeights solves the ridge system (XᵀX + λI) w = Xᵀy with y ≡ 1
// and clamps each weight to [0.1, 3.0]. With fewer than MinExamples rows
// or a singular system it returns current, unchanged.
func OptimizeWeights(examples []*Example, current advisor.Weights) advisor.Weights {
	if len(examples) < MinExamples {
		return current
	}

	n := len(advisor.Factors)
	xtx := make([][]float64, n)
	xty := make([]float64, n)
	for i := range xtx {
		xtx[i] = make([]float64, n)
	}

	for _, ex := range examples {
		row := make([]float64, n)
		for i, f := range advisor.Factors {
			row[i] = ex.Features[f]
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] // label is the constant 1
		}
	}
	for i := 0; i < n; i++ {
		xtx[i][i] += ridgeLambda
	}

	solved, ok := solve(xtx, xty)
	if !ok {
		return current
	}

	weights := make(advisor.Weights, n)
	for i, f := range advisor.Factors {
		w := solved[i]
		if w < 0.1 {
			w = 0.1
		}
		if w > 3.0 {
			w = 3.0
		}
		weights[f] = w
	}
	return weights
}

// TrainAndUpdate runs the full loop: collect examples, optimize, persist.
func (t *Trainer) TrainAndUpdate(ctx context.Context) (*Result, error) {
	examples, err := t.CollectTrainingData(ctx)
	if err != nil {
		return nil, err
	}

	if len(examples) < MinExamples {
		return &Result{
			Success:   false,
			Message:   fmt.Sprintf("not enough training data (%d examples, need %d)", len(examples), MinExamples),
			DataCount: len(examples),
		}, nil
	}

	oldWeights, err := t.weights.GetWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	if len(oldWeights) == 0 {
		oldWeights = advisor.DefaultWeights()
	}

	newWeights := OptimizeWeights(examples, oldWeights)
	if err := t.weights.SetWeights(ctx, newWeights); err != nil {
		return nil, fmt.Errorf("failed to save weights: %w", err)
	}

	agreed := 0
	for _, ex := range examples {
		if ex.Agreement {
			agreed++
		}
	}
	agreementRate := math.Round(float64(agreed)/float64(len(examples))*1000) / 10

	deltas := make(map[string]float64, len(advisor.Factors))
	for _, f := range advisor.Factors {
		deltas[f] = math.Round((newWeights[f]-oldWeights[f])*1000) / 1000
	}

	return &Result{
		Success:       true,
		Message:       fmt.Sprintf("trained on %d examples", len(examples)),
		DataCount:     len(examples),
		AgreementRate: agreementRate,
		WeightDeltas:  deltas,
	}, nil
}

// solve runs Gaussian elimination with partial pivoting on a copy of the
// inputs. The second return is false when the matrix is singular.
func solve(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		copy(m[i], a[i])
		m[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k <= n; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, true
}
