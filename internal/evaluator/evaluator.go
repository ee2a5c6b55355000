// Package evaluator ranks Texas Hold'em hands using the Cactus-Kev style
// evaluator from chehsunliu/poker. Scores run 1..7462 with lower meaning
// stronger; all hand-strength percentages in the engine derive from
// ScoreToStrength, which is the single source of truth for that mapping.
package evaluator

import (
	"math/rand"

	chehsunliu "github.com/chehsunliu/poker"

	"github.com/lox/holdem-live/internal/deck"
)

// monteCarloSamples is the number of random board completions used to
// score a hand before the river.
const monteCarloSamples = 100

// Evaluator scores 7-card hands. It carries an RNG for Monte Carlo
// completion of incomplete boards, so results are reproducible under a
// seeded source.
type Evaluator struct {
	rng *rand.Rand
}

// New creates an evaluator using the provided RNG
func New(rng *rand.Rand) *Evaluator {
	return &Evaluator{rng: rng}
}

// Evaluate scores hole cards against the board. With a complete five-card
// board the score is exact. With fewer board cards the score is the mean
// over random completions drawn from the deck as seen from this hand's
// point of view (hole cards and board removed, opponents unknown).
func (e *Evaluator) Evaluate(hole, board []deck.Card) (int, string) {
	if len(board) >= 5 {
		score := evaluate(hole, board)
		return score, Category(score)
	}

	remaining := remainingDeck(hole, board)
	need := 5 - len(board)

	total := 0
	for i := 0; i < monteCarloSamples; i++ {
		e.rng.Shuffle(len(remaining), func(a, b int) {
			remaining[a], remaining[b] = remaining[b], remaining[a]
		})
		simBoard := append(append([]deck.Card{}, board...), remaining[:need]...)
		total += evaluate(hole, simBoard)
	}

	avg := total / monteCarloSamples
	return avg, Category(avg)
}

func evaluate(hole, board []deck.Card) int {
	cards := make([]chehsunliu.Card, 0, len(hole)+len(board))
	for _, c := range append(append([]deck.Card{}, hole...), board...) {
		cards = append(cards, chehsunliu.NewCard(c.String()))
	}
	return int(chehsunliu.Evaluate(cards))
}

func remainingDeck(known ...[]deck.Card) []deck.Card {
	seen := make(map[deck.Card]bool)
	for _, group := range known {
		for _, c := range group {
			seen[c] = true
		}
	}
	out := make([]deck.Card, 0, 52)
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			c := deck.NewCard(rank, suit)
			if !seen[c] {
				out = append(out, c)
			}
		}
	}
	return out
}

// Category names the hand class for a score
func Category(score int) string {
	switch {
	case score <= 10:
		return "Straight Flush"
	case score <= 166:
		return "Four of a Kind"
	case score <= 322:
		return "Full House"
	case score <= 1599:
		return "Flush"
	case score <= 1609:
		return "Straight"
	case score <= 2467:
		return "Three of a Kind"
	case score <= 3325:
		return "Two Pair"
	case score <= 6185:
		return "Pair"
	default:
		return "High Card"
	}
}

// ScoreToStrength converts an evaluator score to a 0..1 strength value.
// Boundaries follow the standard category breaks of the 7462-rank space.
func ScoreToStrength(score int) float64 {
	switch {
	case score <= 10:
		return 0.95
	case score <= 166:
		return 0.90
	case score <= 322:
		return 0.85
	case score <= 1599:
		return 0.75
	case score <= 1609:
		return 0.65
	case score <= 2467:
		return 0.55
	case score <= 3325:
		return 0.45
	case score <= 6185:
		return 0.25
	default:
		return 0.05
	}
}
