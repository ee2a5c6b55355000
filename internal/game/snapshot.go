package game

import (
	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Read-only accessors used by the transport layer to serialize state.
// Callers hold the per-game lock, so returned slices and pointers are
// safe to read until the lock is released.

// Players returns the seat list in table order
func (g *Engine) Players() []*Player { return g.players }

// Phase returns the current hand phase
func (g *Engine) Phase() Phase { return g.phase }

// Pot returns the chips currently in the pot
func (g *Engine) Pot() int { return g.pot }

// CurrentBet returns the table bet players must match this round
func (g *Engine) CurrentBet() int { return g.currentBet }

// LastRaiseAmount returns the size of the most recent raise. Pre-flop it
// starts at the big blind; on later streets it is 0 until someone raises.
func (g *Engine) LastRaiseAmount() int { return g.lastRaiseAmount }

// Blinds returns the current small and big blind amounts
func (g *Engine) Blinds() (int, int) { return g.smallBlind, g.bigBlind }

// HandCount returns the number of hands started
func (g *Engine) HandCount() int { return g.handCount }

// DealerIndex returns the dealer seat for the current hand
func (g *Engine) DealerIndex() int { return g.dealerIndex }

// BlindPositions returns the small and big blind seats stored at hand
// start (-1 when no blinds were posted). They are snapshots, never
// recomputed mid-hand.
func (g *Engine) BlindPositions() (int, int) { return g.smallBlindIndex, g.bigBlindIndex }

// CurrentSeat returns the seat whose turn it is, or -1 if none
func (g *Engine) CurrentSeat() int { return g.currentIndex }

// CurrentPlayer returns the player whose turn it is, or nil
func (g *Engine) CurrentPlayer() *Player {
	if g.currentIndex == noSeat {
		return nil
	}
	return g.players[g.currentIndex]
}

// AdvanceTurn moves the current actor to the next eligible seat and
// returns it. Used by external AI drivers that interleave events between
// turns.
func (g *Engine) AdvanceTurn() int {
	if g.currentIndex == noSeat {
		return noSeat
	}
	g.currentIndex = g.nextEligible(g.currentIndex + 1)
	return g.currentIndex
}

// CommunityCards returns the board dealt so far
func (g *Engine) CommunityCards() []deck.Card { return g.communityCards }

// LastAIDecisions returns the most recent decision per AI player id
func (g *Engine) LastAIDecisions() map[string]AIDecision { return g.lastAIDecisions }

// CurrentHandEvents returns the event buffer for the hand in progress
func (g *Engine) CurrentHandEvents() []HandEvent { return g.currentHandEvents }

// HandEvents returns the bounded cross-hand event history
func (g *Engine) HandEvents() []HandEvent { return g.handEvents }

// LastHandSummary returns the most recent completed hand, or nil
func (g *Engine) LastHandSummary() *CompletedHand { return g.lastHandSummary }

// HandHistory returns the bounded rich completed-hand history
func (g *Engine) HandHistory() []CompletedHand { return g.handHistory }

// HumanPlayer returns the human seat
func (g *Engine) HumanPlayer() *Player { return g.humanPlayer() }

// SessionID returns the game's session identifier
func (g *Engine) SessionID() string { return g.sessionID }

// Evaluator returns the engine's hand evaluator
func (g *Engine) Evaluator() *evaluator.Evaluator { return g.eval }

// TotalChips returns the conserved chip total for the table
func (g *Engine) TotalChips() int { return g.totalChips }

// ShowdownPlayer is one seat's view in the showdown read model
type ShowdownPlayer struct {
	PlayerID  string
	Name      string
	HoleCards []deck.Card
	Stack     int
}

// ShowdownResults is the post-award snapshot of a hand's resolution
type ShowdownResults struct {
	Pots           []Pot
	CommunityCards []deck.Card
	Players        []ShowdownPlayer
}

// GetShowdownResults returns the resolved pots and revealed state, or nil
// before showdown.
func (g *Engine) GetShowdownResults() *ShowdownResults {
	if g.phase != Showdown {
		return nil
	}

	results := &ShowdownResults{
		Pots:           ResolvePots(g.eval, g.players, g.communityCards),
		CommunityCards: append([]deck.Card{}, g.communityCards...),
	}
	for _, p := range g.players {
		results.Players = append(results.Players, ShowdownPlayer{
			PlayerID:  p.ID,
			Name:      p.Name,
			HoleCards: append([]deck.Card{}, p.HoleCards...),
			Stack:     p.Stack,
		})
	}
	return results
}
