package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-live/internal/evaluator"
)

// decide runs the policy with a fixed seed and common table values
func decide(t *testing.T, personality Personality, hole, board []string, tableBet, pot, stack, playerBet int) AIDecision {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	eval := evaluator.New(rng)
	return Decide(rng, eval, personality, testCards(t, hole...), testCards(t, board...),
		tableBet, pot, stack, playerBet, 10, 0)
}

func TestTightAggressiveFoldsWeakHands(t *testing.T) {
	t.Parallel()

	d := decide(t, TightAggressive,
		[]string{"7h", "2d"}, []string{"Ks", "Qc", "9d", "5h", "3c"},
		50, 100, 1000, 0)

	assert.Equal(t, Fold, d.Action)
	assert.Equal(t, 0, d.Amount)
	assert.Equal(t, 0.05, d.HandStrength)
}

func TestTightAggressiveRaisesPremium(t *testing.T) {
	t.Parallel()

	d := decide(t, TightAggressive,
		[]string{"Ah", "Ad"}, []string{"As", "Kc", "Kd", "5h", "3c"},
		50, 400, 1000, 0)

	assert.Equal(t, Raise, d.Action)
	assert.Equal(t, 0.85, d.HandStrength)
	// Pot-sized raise, capped at an all-in
	assert.Equal(t, 400, d.Amount)
	assert.LessOrEqual(t, d.Amount, 1000+0)
}

func TestMathematicalCallsOnPotOdds(t *testing.T) {
	t.Parallel()

	// Two pair, pot odds 50/(100+50) = 0.33
	d := decide(t, Mathematical,
		[]string{"9h", "9d"}, []string{"Ks", "Kc", "2d", "5h", "7c"},
		50, 100, 1000, 0)

	assert.Equal(t, Call, d.Action)
	assert.Equal(t, 0.45, d.HandStrength)
	assert.InDelta(t, 1.0/3.0, d.PotOdds, 0.001)
}

func TestMathematicalFoldsWeakHands(t *testing.T) {
	t.Parallel()

	d := decide(t, Mathematical,
		[]string{"7h", "2d"}, []string{"Ks", "Qc", "9d", "5h", "3c"},
		200, 100, 1000, 0)

	assert.Equal(t, Fold, d.Action)
	assert.GreaterOrEqual(t, d.Confidence, 0.9)
}

func TestLoosePassiveCallsTinyBets(t *testing.T) {
	t.Parallel()

	// High card, but the call costs stack/40 or less
	d := decide(t, LoosePassive,
		[]string{"7h", "2d"}, []string{"Ks", "Qc", "9d", "5h", "3c"},
		20, 500, 1000, 0)

	assert.Equal(t, Call, d.Action)
	assert.Equal(t, 20, d.Amount)
}

func TestLoosePassiveFoldsWhenTooExpensive(t *testing.T) {
	t.Parallel()

	// A pair, but the table bet exceeds a third of the stack
	d := decide(t, LoosePassive,
		[]string{"9h", "9d"}, []string{"Ks", "Qc", "2d", "5h", "7c"},
		400, 200, 900, 0)

	assert.Equal(t, Fold, d.Action)
}

func TestManiacRaisesStrongHands(t *testing.T) {
	t.Parallel()

	d := decide(t, Maniac,
		[]string{"9h", "9d"}, []string{"Ks", "Kc", "2d", "5h", "7c"},
		50, 200, 2000, 0)

	assert.Equal(t, Raise, d.Action)
	// Two times the pot, capped at all-in
	assert.Equal(t, 400, d.Amount)
}

func TestConservativeFoldsWeakVersusDeepStacks(t *testing.T) {
	t.Parallel()

	// SPR well above 10 with a mediocre hand
	d := decide(t, Conservative,
		[]string{"9h", "9d"}, []string{"Ks", "Qc", "2d", "5h", "7c"},
		50, 50, 2000, 0)

	assert.Equal(t, Fold, d.Action)
}

func TestSPRSentinelWhenPotEmpty(t *testing.T) {
	t.Parallel()

	d := decide(t, Mathematical,
		[]string{"9h", "9d"}, []string{"Ks", "Qc", "2d", "5h", "7c"},
		0, 0, 1000, 0)

	assert.Equal(t, 999.0, d.SPR)
	assert.Equal(t, 0.0, d.PotOdds)
}

func TestDecisionIDsAreUnique(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	eval := evaluator.New(rng)
	hole := testCards(t, "Ah", "Ad")
	board := testCards(t, "As", "Kc", "Kd", "5h", "3c")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		d := Decide(rng, eval, TightAggressive, hole, board, 10, 100, 1000, 0, 10, 0)
		require.NotEmpty(t, d.DecisionID)
		require.False(t, seen[d.DecisionID], "duplicate decision id")
		seen[d.DecisionID] = true
	}
}

func TestRaiseAmountsNeverExceedAllIn(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	eval := evaluator.New(rng)
	hole := testCards(t, "Ah", "Ad")
	board := testCards(t, "As", "Kc", "Kd", "5h", "3c")

	for _, personality := range Personalities {
		for i := 0; i < 25; i++ {
			d := Decide(rng, eval, personality, hole, board, 80, 5000, 120, 20, 10, 40)
			if d.Action == Raise {
				assert.LessOrEqual(t, d.Amount, 120+20,
					"%s proposed raise beyond all-in", personality)
			}
		}
	}
}
