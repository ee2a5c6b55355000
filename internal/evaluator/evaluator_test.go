package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-live/internal/deck"
)

func cards(t *testing.T, ss ...string) []deck.Card {
	t.Helper()
	out, err := deck.ParseCards(ss)
	require.NoError(t, err)
	return out
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	e := New(rand.New(rand.NewSource(1)))

	tests := []struct {
		name     string
		hole     []string
		board    []string
		category string
	}{
		{"royal flush", []string{"As", "Ks"}, []string{"Qs", "Js", "Ts", "2d", "3c"}, "Straight Flush"},
		{"four of a kind", []string{"Ah", "Ad"}, []string{"As", "Ac", "Kd", "2h", "3c"}, "Four of a Kind"},
		{"full house", []string{"Ah", "Ad"}, []string{"As", "Kc", "Kd", "2h", "3c"}, "Full House"},
		{"flush", []string{"2s", "7s"}, []string{"9s", "Js", "Ks", "3d", "4c"}, "Flush"},
		{"straight", []string{"9h", "8d"}, []string{"7s", "6c", "5d", "Kh", "2c"}, "Straight"},
		{"three of a kind", []string{"9h", "9d"}, []string{"9s", "Kc", "2d", "5h", "7c"}, "Three of a Kind"},
		{"two pair", []string{"9h", "9d"}, []string{"Ks", "Kc", "2d", "5h", "7c"}, "Two Pair"},
		{"pair", []string{"9h", "9d"}, []string{"Ks", "Qc", "2d", "5h", "7c"}, "Pair"},
		{"high card", []string{"9h", "7d"}, []string{"Ks", "Qc", "2d", "5h", "3c"}, "High Card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, category := e.Evaluate(cards(t, tt.hole...), cards(t, tt.board...))
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.category, Category(score))
		})
	}
}

func TestEvaluateMonteCarloIncompleteBoard(t *testing.T) {
	t.Parallel()

	e := New(rand.New(rand.NewSource(99)))

	// Pocket aces pre-flop should average far stronger than 7-2 offsuit
	acesScore, _ := e.Evaluate(cards(t, "As", "Ah"), nil)
	trashScore, _ := e.Evaluate(cards(t, "7s", "2h"), nil)
	assert.Less(t, acesScore, trashScore, "aces should score better (lower) than 7-2")

	// Deterministic under the same seed
	e2 := New(rand.New(rand.NewSource(99)))
	again, _ := e2.Evaluate(cards(t, "As", "Ah"), nil)
	assert.Equal(t, acesScore, again)
}

func TestScoreToStrengthTotalAndMonotonic(t *testing.T) {
	t.Parallel()

	valid := map[float64]bool{
		0.05: true, 0.25: true, 0.45: true, 0.55: true,
		0.65: true, 0.75: true, 0.85: true, 0.90: true, 0.95: true,
	}

	prev := 1.0
	for score := 1; score <= 7462; score++ {
		s := ScoreToStrength(score)
		if !valid[s] {
			t.Fatalf("score %d produced unexpected strength %v", score, s)
		}
		if s > prev {
			t.Fatalf("strength increased at score %d: %v > %v", score, s, prev)
		}
		prev = s
	}
}

func TestScoreToStrengthBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score    int
		strength float64
	}{
		{1, 0.95}, {10, 0.95},
		{11, 0.90}, {166, 0.90},
		{167, 0.85}, {322, 0.85},
		{323, 0.75}, {1599, 0.75},
		{1600, 0.65}, {1609, 0.65},
		{1610, 0.55}, {2467, 0.55},
		{2468, 0.45}, {3325, 0.45},
		{3326, 0.25}, {6185, 0.25},
		{6186, 0.05}, {7462, 0.05},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.strength, ScoreToStrength(tt.score), "score %d", tt.score)
	}
}
