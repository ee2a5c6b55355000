package game

import "github.com/lox/holdem-live/internal/deck"

// minPlayableStack is the smallest stack a player may start a hand with.
// Players below it sit out until the game ends.
const minPlayableStack = 5

// Player holds per-seat chip and hand state. All mutation happens inside
// the engine under the game's lock.
type Player struct {
	ID          string
	Name        string
	IsHuman     bool
	Personality Personality

	Stack         int
	CurrentBet    int // chips committed this betting round
	TotalInvested int // chips committed this hand, across rounds
	HoleCards     []deck.Card

	IsActive bool
	AllIn    bool
	HasActed bool
}

// NewPlayer creates a player with the given starting stack
func NewPlayer(id, name string, isHuman bool, stack int) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		IsHuman:  isHuman,
		Stack:    stack,
		IsActive: true,
	}
}

// Bet commits up to amount chips, capped at the remaining stack, and
// returns the amount actually committed. A bet that empties the stack
// marks the player all-in.
func (p *Player) Bet(amount int) int {
	if amount >= p.Stack {
		amount = p.Stack
		p.AllIn = true
	}

	p.Stack -= amount
	p.CurrentBet += amount
	p.TotalInvested += amount

	if p.Stack == 0 && p.CurrentBet > 0 {
		p.AllIn = true
	}

	return amount
}

// ResetForNewHand clears hand state. Players whose stack has fallen below
// the playable minimum stay inactive.
func (p *Player) ResetForNewHand() {
	p.CurrentBet = 0
	p.TotalInvested = 0
	p.AllIn = false
	p.HoleCards = nil
	p.HasActed = false
	p.IsActive = p.Stack >= minPlayableStack
}

// ResetForNewRound clears per-round state between streets
func (p *Player) ResetForNewRound() {
	p.CurrentBet = 0
	p.HasActed = false
}
