package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Personality tags an AI seat's decision policy
type Personality string

const (
	Conservative    Personality = "Conservative"
	Aggressive      Personality = "Aggressive"
	Mathematical    Personality = "Mathematical"
	LoosePassive    Personality = "Loose-Passive"
	TightAggressive Personality = "Tight-Aggressive"
	Maniac          Personality = "Maniac"
)

// Personalities is the pool assigned (without duplicates) to AI seats
var Personalities = []Personality{
	Conservative,
	Aggressive,
	Mathematical,
	LoosePassive,
	TightAggressive,
	Maniac,
}

// sprInfinite stands in for an undefined stack-to-pot ratio when the pot
// is empty. A finite sentinel keeps the value JSON-encodable.
const sprInfinite = 999.0

// AIDecision is the full output of one AI turn: the chosen action plus
// the derived metrics shown to observers. DecisionID is unique per
// decision so clients can deduplicate retransmitted state.
type AIDecision struct {
	Action       Action
	Amount       int
	Reasoning    string
	HandStrength float64
	PotOdds      float64
	Confidence   float64
	SPR          float64
	DecisionID   string
}

// Decide computes an action for an AI seat. It is a pure function of its
// inputs apart from the injected RNG; all engine state arrives through
// parameters. Raise amounts are totals capped at an all-in; proposing
// below the table minimum is allowed, the engine converts or rejects.
func Decide(rng *rand.Rand, eval *evaluator.Evaluator, personality Personality,
	hole, board []deck.Card, tableBet, pot, stack, playerBet, bigBlind, lastRaiseAmount int) AIDecision {

	minRaiseIncrement := lastRaiseAmount
	if minRaiseIncrement <= 0 {
		minRaiseIncrement = bigBlind
	}

	score, handRank := eval.Evaluate(hole, board)
	strength := evaluator.ScoreToStrength(score)

	callAmount := tableBet - playerBet
	potOdds := 0.0
	if pot+callAmount > 0 {
		potOdds = float64(callAmount) / float64(pot+callAmount)
	}

	spr := sprInfinite
	if pot > 0 {
		spr = float64(stack) / float64(pot)
	}

	allIn := stack + playerBet
	minRaiseTo := tableBet + minRaiseIncrement

	var (
		action     Action
		amount     int
		reasoning  string
		confidence float64
	)

	switch personality {
	case Conservative:
		switch {
		case spr < 3 && strength >= 0.45:
			if rng.Float64() > 0.3 {
				action, amount = Raise, min(minRaiseTo, allIn)
			} else {
				action, amount = Call, callAmount
			}
			reasoning = fmt.Sprintf("Low SPR (%.1f) - pot committed with %s (%.0f%%)", spr, handRank, strength*100)
			confidence = 0.85
		case spr > 10 && strength < 0.65:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("High SPR (%.1f) - need premium hand, folding %s (%.0f%%)", spr, handRank, strength*100)
			confidence = 0.8
		case strength >= 0.75:
			if rng.Float64() > 0.3 {
				action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
			} else {
				action, amount = Call, callAmount
			}
			reasoning = fmt.Sprintf("Premium hand (%s, %.0f%%). Conservative value betting.", handRank, strength*100)
			confidence = 0.9
		case strength >= 0.45:
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Solid hand (%s, %.0f%%). Conservative call.", handRank, strength*100)
			confidence = 0.7
		case strength >= 0.25 && callAmount <= stack/20:
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Marginal hand (%s, %.0f%%). Small bet, worth a call.", handRank, strength*100)
			confidence = 0.5
		default:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Weak hand (%s, %.0f%%). Conservative fold.", handRank, strength*100)
			confidence = 0.9
		}

	case Aggressive:
		switch {
		case spr < 3 && strength >= 0.25:
			action, amount = Raise, stack
			reasoning = fmt.Sprintf("Low SPR (%.1f) - aggressive push with %s (%.0f%%)", spr, handRank, strength*100)
			confidence = 0.75
		case spr > 7 && strength < 0.25:
			bluffChance := 0.2
			if callAmount <= stack/20 {
				bluffChance = 0.4
			}
			if rng.Float64() < bluffChance {
				action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
				reasoning = fmt.Sprintf("High SPR (%.1f) - applying pressure with weak %s. Bluff play.", spr, handRank)
				confidence = 0.4
			} else {
				action, amount = Fold, 0
				reasoning = fmt.Sprintf("High SPR (%.1f) - weak hand (%s), conserving chips for better spots.", spr, handRank)
				confidence = 0.7
			}
		case strength >= 0.55:
			if rng.Float64() > 0.2 {
				action, amount = Raise, min(max(minRaiseTo, tableBet*3), allIn)
			} else {
				action, amount = Call, callAmount
			}
			reasoning = fmt.Sprintf("Strong hand (%s, %.0f%%). Aggressive value betting.", handRank, strength*100)
			confidence = 0.8
		case strength >= 0.25:
			if rng.Float64() > 0.4 {
				if rng.Float64() > 0.6 {
					action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
				} else {
					action, amount = Call, callAmount
				}
				reasoning = fmt.Sprintf("Playable hand (%s, %.0f%%). Aggressive play to build pot.", handRank, strength*100)
				confidence = 0.6
			} else {
				action, amount = Fold, 0
				reasoning = fmt.Sprintf("Marginal hand (%s). Aggressive fold to control pot size.", handRank)
				confidence = 0.5
			}
		default:
			if rng.Float64() > 0.7 && callAmount <= stack/40 {
				action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
				reasoning = fmt.Sprintf("Weak hand (%s) but bluffing for fold equity. Aggressive move.", handRank)
				confidence = 0.3
			} else {
				action, amount = Fold, 0
				reasoning = fmt.Sprintf("Too weak to continue (%s, %.0f%%). Smart aggression.", handRank, strength*100)
				confidence = 0.8
			}
		}

	case Mathematical:
		switch {
		case spr < 3 && strength >= 0.25:
			if callAmount < stack {
				action, amount = Call, callAmount
			} else {
				action, amount = Raise, stack
			}
			reasoning = fmt.Sprintf("Low SPR (%.1f) - pot committed with %s. Positive EV.", spr, handRank)
			confidence = 0.85
		case strength >= 0.65:
			action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
			reasoning = fmt.Sprintf("Strong hand (%s, %.0f%%). Mathematical value betting.", handRank, strength*100)
			confidence = 0.9
		case strength >= 0.45:
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Solid hand (%s, %.0f%%). Positive expectation call.", handRank, strength*100)
			confidence = 0.8
		case strength >= 0.25 && (potOdds <= 0.33 || spr < 5):
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Marginal hand (%s, %.0f%%). Pot odds %.0f%%, SPR %.1f - positive EV.", handRank, strength*100, potOdds*100, spr)
			confidence = 0.6
		case strength >= 0.25:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Pair (%s). Pot odds %.0f%%, SPR %.1f - negative EV fold.", handRank, potOdds*100, spr)
			confidence = 0.8
		default:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Weak hand (%s, %.0f%%). Clear mathematical fold.", handRank, strength*100)
			confidence = 0.95
		}

	case LoosePassive:
		if strength >= 0.20 {
			switch {
			case spr < 3:
				action, amount = Call, callAmount
				reasoning = fmt.Sprintf("Low SPR (%.1f) - calling with %s. Loose-passive play.", spr, handRank)
				confidence = 0.6
			case tableBet > stack/3:
				action, amount = Fold, 0
				reasoning = fmt.Sprintf("Too expensive (%s). Even calling stations fold sometimes.", handRank)
				confidence = 0.7
			default:
				action, amount = Call, callAmount
				reasoning = fmt.Sprintf("Calling with %s (%.0f%%). Loose-passive style.", handRank, strength*100)
				confidence = 0.5
			}
		} else if callAmount <= stack/40 {
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Small bet, worth a call with %s. Loose play.", handRank)
			confidence = 0.4
		} else {
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Weak hand (%s). Fold.", handRank)
			confidence = 0.8
		}

	case TightAggressive:
		switch {
		case strength >= 0.75:
			action, amount = Raise, min(max(minRaiseTo, pot), allIn)
			reasoning = fmt.Sprintf("Premium hand (%s, %.0f%%). TAG value betting.", handRank, strength*100)
			confidence = 0.95
		case strength >= 0.55:
			if spr < 5 {
				action, amount = Raise, stack
				reasoning = fmt.Sprintf("Low SPR (%.1f), strong hand (%s). TAG push.", spr, handRank)
				confidence = 0.9
			} else {
				action, amount = Raise, min(max(minRaiseTo, tableBet*2), allIn)
				reasoning = fmt.Sprintf("Strong hand (%s). TAG value raise.", handRank)
				confidence = 0.85
			}
		case strength >= 0.35:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Below TAG threshold (%s, %.0f%%). Fold.", handRank, strength*100)
			confidence = 0.8
		default:
			action, amount = Fold, 0
			reasoning = fmt.Sprintf("Weak hand (%s). TAG disciplined fold.", handRank)
			confidence = 0.95
		}

	case Maniac:
		switch {
		case strength >= 0.45:
			action, amount = Raise, min(max(minRaiseTo, pot*2), allIn)
			reasoning = fmt.Sprintf("Strong hand (%s). Maniac value aggression!", handRank)
			confidence = 0.7
		case rng.Float64() < 0.70:
			action, amount = Raise, min(max(minRaiseTo, pot), allIn)
			reasoning = fmt.Sprintf("Bluffing with %s. Maniac pressure play!", handRank)
			confidence = 0.3
		case callAmount < stack/2:
			action, amount = Call, callAmount
			reasoning = fmt.Sprintf("Calling with %s to vary play. Maniac style.", handRank)
			confidence = 0.4
		default:
			action, amount = Fold, 0
			reasoning = "Too expensive. Even maniacs fold sometimes."
			confidence = 0.6
		}

	default:
		if strength > 0.4 {
			action, amount = Call, callAmount
		} else {
			action, amount = Fold, 0
		}
		reasoning = fmt.Sprintf("Default strategy: %s with %.0f%% hand strength.", action, strength*100)
		confidence = 0.5
	}

	return AIDecision{
		Action:       action,
		Amount:       amount,
		Reasoning:    reasoning,
		HandStrength: strength,
		PotOdds:      potOdds,
		Confidence:   confidence,
		SPR:          spr,
		DecisionID:   uuid.New().String(),
	}
}
