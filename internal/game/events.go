package game

import "time"

// EventKind classifies a HandEvent
type EventKind string

const (
	EventDeal          EventKind = "deal"
	EventAction        EventKind = "action"
	EventPotAward      EventKind = "pot_award"
	EventBlindIncrease EventKind = "blind_increase"
)

// HandEvent is one entry in the per-hand event buffer. The buffer feeds
// both the cross-hand history and derived read models (winner info, the
// BB-option check), so every deal, action, award and blind change lands
// here.
type HandEvent struct {
	Timestamp    time.Time
	Kind         EventKind
	PlayerID     string
	Action       string
	Amount       int
	HandStrength float64
	Reasoning    string
	PotSize      int
	CurrentBet   int
}

// award action labels recorded on pot_award events. Winner info derives
// won_by_fold from these, not from whether hole cards were revealed.
const (
	awardWin       = "win"
	awardWinByFold = "win_by_fold"
	awardDefensive = "defensive_award"
)

// WonByFold reports whether a pot_award event came from anything other
// than a showdown resolution: a fold collapse, or a defensive award.
func (e HandEvent) WonByFold() bool {
	return e.Kind == EventPotAward && e.Action != awardWin
}

func (g *Engine) logEvent(kind EventKind, playerID, action string, amount int, handStrength float64, reasoning string) {
	g.currentHandEvents = append(g.currentHandEvents, HandEvent{
		Timestamp:    time.Now(),
		Kind:         kind,
		PlayerID:     playerID,
		Action:       action,
		Amount:       amount,
		HandStrength: handStrength,
		Reasoning:    reasoning,
		PotSize:      g.pot,
		CurrentBet:   g.currentBet,
	})
}

// flushHandEvents appends the current hand's events to the bounded
// cross-hand history and clears the buffer.
func (g *Engine) flushHandEvents() {
	if len(g.currentHandEvents) == 0 {
		return
	}
	g.handEvents = append(g.handEvents, g.currentHandEvents...)
	if excess := len(g.handEvents) - g.config.EventHistoryCap; excess > 0 {
		g.handEvents = g.handEvents[excess:]
	}
	g.currentHandEvents = nil
}
