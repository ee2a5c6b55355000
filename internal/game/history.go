package game

import (
	"time"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// ActionRecord captures one successful non-fold action for hand history
type ActionRecord struct {
	PlayerID    string
	PlayerName  string
	Action      string
	Amount      int
	StackBefore int
	StackAfter  int
	PotBefore   int
	PotAfter    int
	Reasoning   string
}

// BettingRound is the closed record of one street's betting
type BettingRound struct {
	Name           string
	CommunityCards []deck.Card
	Actions        []ActionRecord
	PotAtStart     int
	PotAtEnd       int
}

// CompletedHand is the by-value snapshot of a finished hand, built for
// post-hand analysis from the human player's perspective.
type CompletedHand struct {
	HandNumber     int
	SessionID      string
	Timestamp      time.Time
	CommunityCards []deck.Card
	PotSize        int
	WinnerIDs      []string
	WinnerNames    []string

	HumanAction       string
	HumanCards        []deck.Card
	HumanFinalStack   int
	HumanHandStrength float64
	HumanPotOdds      float64

	AIDecisions   map[string]AIDecision
	Events        []HandEvent
	BettingRounds []BettingRound

	// Populated only when the hand reached showdown
	ShowdownHands map[string][]deck.Card
	HandRankings  map[string]string
}

// saveCompletedHand records the finished hand in both bounded histories.
// showdown reports whether the hand reached showdown; false means the hand
// ended early on folds and no hands are revealed.
func (g *Engine) saveCompletedHand(potSize int, winnerIDs []string, showdown bool) {
	human := g.humanPlayer()
	if human == nil {
		return
	}

	winnerNames := make([]string, 0, len(winnerIDs))
	for _, id := range winnerIDs {
		if p := g.playerByID(id); p != nil {
			winnerNames = append(winnerNames, p.Name)
		}
	}

	humanAction := "unknown"
	switch {
	case !human.IsActive:
		humanAction = "fold"
	case human.AllIn:
		humanAction = "all-in"
	default:
		for i := len(g.currentHandEvents) - 1; i >= 0; i-- {
			e := g.currentHandEvents[i]
			if e.PlayerID == human.ID && e.Kind == EventAction {
				humanAction = e.Action
				break
			}
		}
	}

	humanStrength := 0.0
	if len(human.HoleCards) > 0 && len(g.communityCards) > 0 {
		score, _ := g.eval.Evaluate(human.HoleCards, g.communityCards)
		humanStrength = evaluator.ScoreToStrength(score)
	}

	humanPotOdds := 0.0
	for i := len(g.currentHandEvents) - 1; i >= 0; i-- {
		e := g.currentHandEvents[i]
		if e.PlayerID == human.ID && e.PotSize > 0 {
			if callAmount := e.CurrentBet; callAmount > 0 {
				humanPotOdds = float64(callAmount) / float64(e.PotSize+callAmount)
			}
			break
		}
	}

	hand := CompletedHand{
		HandNumber:        g.handCount,
		SessionID:         g.sessionID,
		Timestamp:         time.Now().UTC(),
		CommunityCards:    append([]deck.Card{}, g.communityCards...),
		PotSize:           potSize,
		WinnerIDs:         winnerIDs,
		WinnerNames:       winnerNames,
		HumanAction:       humanAction,
		HumanCards:        append([]deck.Card{}, human.HoleCards...),
		HumanFinalStack:   human.Stack,
		HumanHandStrength: humanStrength,
		HumanPotOdds:      humanPotOdds,
		AIDecisions:       copyDecisions(g.lastAIDecisions),
		Events:            append([]HandEvent{}, g.currentHandEvents...),
		BettingRounds:     append([]BettingRound{}, g.handBettingRounds...),
		ShowdownHands:     map[string][]deck.Card{},
		HandRankings:      map[string]string{},
	}

	if showdown {
		for _, p := range g.players {
			if len(p.HoleCards) == 2 && (p.IsActive || p.AllIn) {
				hand.ShowdownHands[p.ID] = append([]deck.Card{}, p.HoleCards...)
				_, rank := g.eval.Evaluate(p.HoleCards, g.communityCards)
				hand.HandRankings[p.ID] = rank
			}
		}
	}

	g.lastHandSummary = &hand

	g.handHistory = append(g.handHistory, hand)
	if excess := len(g.handHistory) - g.config.HandHistoryCap; excess > 0 {
		g.handHistory = g.handHistory[excess:]
	}

	g.completedHands = append(g.completedHands, hand)
	if excess := len(g.completedHands) - g.config.LegacyHandCap; excess > 0 {
		g.completedHands = g.completedHands[excess:]
	}
}

func copyDecisions(in map[string]AIDecision) map[string]AIDecision {
	out := make(map[string]AIDecision, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// closeBettingRound folds the accumulated per-round actions into the
// hand's betting-round history.
func (g *Engine) closeBettingRound() {
	if len(g.currentRoundActions) == 0 {
		return
	}
	g.handBettingRounds = append(g.handBettingRounds, BettingRound{
		Name:           g.phase.String(),
		CommunityCards: append([]deck.Card{}, g.communityCards...),
		Actions:        append([]ActionRecord{}, g.currentRoundActions...),
		PotAtStart:     g.potAtRoundStart,
		PotAtEnd:       g.pot,
	})
	g.currentRoundActions = nil
}
