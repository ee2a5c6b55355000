package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-live/internal/game"
)

const (
	// writeWait bounds each websocket write so a stalled observer cannot
	// hold the game's critical section indefinitely.
	writeWait = 10 * time.Second

	// driver guards of the same kind as the engine's own turn driver; the
	// iteration cap here is 50, half the engine's
	maxDriverIterations = 50
	maxSameSeatRepeats  = 5
)

// observer is one connected websocket client. The write mutex serializes
// broadcast writes (made under the game lock) with error frames sent from
// the read path.
type observer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (o *observer) send(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return o.conn.WriteJSON(event)
}

// Hub is the action pipeline for one game: it owns the per-game lock that
// serializes every engine mutation, the observer set, and the step-mode
// rendezvous. All events for the game are emitted while holding the lock,
// so each observer sees them in emission order.
type Hub struct {
	ID     string
	engine *game.Engine
	logger *log.Logger
	clock  quartz.Clock

	aiActionDelay time.Duration
	stepTimeout   time.Duration

	mu        sync.Mutex // serializes all engine access and event emission
	observers map[*observer]bool
	// continueCh is the single-slot step-mode rendezvous; HandleContinue
	// signals it without blocking, the driver drains before waiting.
	continueCh chan struct{}
	failed     bool // set after an invariant violation; the game is quarantined
}

// NewHub creates the pipeline for one engine instance
func NewHub(id string, engine *game.Engine, logger *log.Logger, clock quartz.Clock, aiActionDelay, stepTimeout time.Duration) *Hub {
	return &Hub{
		ID:            id,
		engine:        engine,
		logger:        logger.With("game_id", id),
		clock:         clock,
		aiActionDelay: aiActionDelay,
		stepTimeout:   stepTimeout,
		observers:     map[*observer]bool{},
		continueCh:    make(chan struct{}, 1),
	}
}

// AddObserver registers a connection and, if no hand has started yet,
// bootstraps the first one. Returns the observer handle used for
// removal and error frames.
func (h *Hub) AddObserver(conn *websocket.Conn) *observer {
	h.mu.Lock()
	defer h.mu.Unlock()

	o := &observer{conn: conn}
	h.observers[o] = true

	if h.engine.HandCount() == 0 && !h.failed {
		if err := h.engine.StartHand(false); err != nil {
			h.fail(err)
			return o
		}
		h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, false)})
		h.runAIDriver(false, false)
	} else {
		_ = o.send(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, false)})
	}

	return o
}

// RemoveObserver drops a connection from the broadcast set and reports
// how many observers remain.
func (h *Hub) RemoveObserver(o *observer) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.observers, o)
	return len(h.observers)
}

// ObserverCount returns the number of connected observers
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// HandleContinue signals the step-mode rendezvous. Safe to call from any
// goroutine; a signal with no waiter is retained (single slot) and a
// duplicate signal is dropped.
func (h *Hub) HandleContinue() {
	select {
	case h.continueCh <- struct{}{}:
	default:
	}
}

// HandleAction processes a human action frame: applies it through the
// engine, broadcasts the resulting state, then drives AI turns.
func (h *Hub) HandleAction(sender *observer, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.failed {
		_ = sender.send(Event{Type: TypeError, Data: ErrorData{Message: "game is unavailable after an internal fault"}})
		return
	}

	action, err := game.ParseAction(msg.Action)
	if err != nil {
		_ = sender.send(Event{Type: TypeError, Data: ErrorData{Message: err.Error()}})
		return
	}
	amount := 0
	if msg.Amount != nil {
		amount = *msg.Amount
	}

	result, engineErr := h.engine.SubmitHumanAction(action, amount, false)
	if engineErr != nil {
		h.fail(engineErr)
		return
	}
	if !result.Success {
		_ = sender.send(Event{Type: TypeError, Data: ErrorData{Message: result.Error}})
		return
	}

	h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, msg.ShowAIThinking)})

	h.runAIDriver(msg.ShowAIThinking, msg.StepMode)
}

// HandleNextHand starts the next hand and drives any leading AI turns
func (h *Hub) HandleNextHand(sender *observer, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.failed {
		_ = sender.send(Event{Type: TypeError, Data: ErrorData{Message: "game is unavailable after an internal fault"}})
		return
	}

	if err := h.engine.StartHand(false); err != nil {
		h.fail(err)
		return
	}

	h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, msg.ShowAIThinking)})

	h.runAIDriver(msg.ShowAIThinking, msg.StepMode)
}

// runAIDriver advances AI turns one at a time, emitting an ai_action and
// a state_update per action, pausing in step mode, until the hand needs
// human input or the betting round ends. Called with the lock held.
func (h *Hub) runAIDriver(showAIThinking, stepMode bool) {
	iterations := 0
	lastSeat := -1
	sameSeat := 0
	turnMoved := false

	for h.engine.CurrentSeat() >= 0 {
		iterations++
		if iterations > maxDriverIterations {
			h.logger.Error("ai driver exceeded iteration limit", "iterations", iterations)
			break
		}
		if h.engine.CurrentSeat() == lastSeat {
			sameSeat++
			if sameSeat > maxSameSeatRepeats {
				h.logger.Error("ai driver stuck on seat", "seat", lastSeat)
				break
			}
		} else {
			sameSeat = 0
		}
		lastSeat = h.engine.CurrentSeat()

		if h.engine.BettingRoundComplete() {
			break
		}

		current := h.engine.CurrentPlayer()

		if current.IsHuman && !current.AllIn && !current.HasActed {
			break
		}
		if !current.IsActive || current.AllIn || current.HasActed {
			h.engine.AdvanceTurn()
			turnMoved = true
			continue
		}

		seat := h.engine.CurrentSeat()
		decision := h.engine.ComputeAIDecision(seat)

		result, err := h.engine.ApplyAction(seat, decision.Action, decision.Amount, decision.HandStrength, decision.Reasoning)
		if err != nil {
			h.fail(err)
			return
		}
		if !result.Success {
			h.logger.Error("ai action rejected, falling back to fold",
				"player", current.Name, "action", decision.Action, "error", result.Error)
			fallback, err := h.engine.ApplyAction(seat, game.Fold, 0, decision.HandStrength,
				"fallback fold: "+result.Error)
			if err != nil {
				h.fail(err)
				return
			}

			h.broadcast(Event{Type: TypeAIAction, Data: h.aiActionData(current, game.Fold, 0, 0, "", false)})
			h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, showAIThinking)})

			if h.engine.CurrentSeat() < 0 || fallback.TriggersShowdown {
				break
			}
			h.engine.AdvanceTurn()
			turnMoved = true
			continue
		}

		h.broadcast(Event{Type: TypeAIAction, Data: h.aiActionData(current, decision.Action, decision.Amount, result.BetAmount, decision.Reasoning, showAIThinking)})
		h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, showAIThinking)})

		if stepMode {
			h.awaitContinue(current.Name, decision.Action.String())
		} else if h.aiActionDelay > 0 {
			h.sleep(h.aiActionDelay)
		}

		if h.engine.CurrentSeat() < 0 || result.TriggersShowdown {
			break
		}
		h.engine.AdvanceTurn()
		turnMoved = true
		if h.engine.BettingRoundComplete() {
			break
		}
	}

	if h.engine.BettingRoundComplete() {
		advanced, err := h.engine.AdvanceState(false)
		if err != nil {
			h.fail(err)
			return
		}
		if advanced {
			h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, showAIThinking)})
			if current := h.engine.CurrentPlayer(); current != nil && !current.IsHuman {
				h.runAIDriver(showAIThinking, stepMode)
			}
		}
		return
	}

	// The loop may have stopped at the human's turn after advancing the
	// actor; observers need a snapshot that reflects it. If the turn never
	// moved, the caller's last snapshot is still current.
	if turnMoved {
		h.broadcast(Event{Type: TypeStateUpdate, Data: serializeState(h.engine, showAIThinking)})
	}
}

// awaitContinue blocks on the step-mode rendezvous, bounded by the
// configured timeout. On timeout the driver proceeds as if continue had
// arrived and tells observers why.
func (h *Hub) awaitContinue(playerName, action string) {
	// Drop any stale signal so this wait pairs with a fresh continue.
	select {
	case <-h.continueCh:
	default:
	}

	h.broadcast(Event{Type: TypeAwaitingContinue, Data: AwaitingContinueData{
		PlayerName: playerName,
		Action:     action,
	}})

	timer := h.clock.NewTimer(h.stepTimeout)
	defer timer.Stop()

	select {
	case <-h.continueCh:
	case <-timer.C:
		h.logger.Info("step mode timed out, auto-resuming", "timeout", h.stepTimeout)
		h.broadcast(Event{Type: TypeAutoResumed, Data: AutoResumedData{
			Reason:         "timeout",
			TimeoutSeconds: int(h.stepTimeout / time.Second),
		}})
	}
}

func (h *Hub) sleep(d time.Duration) {
	timer := h.clock.NewTimer(d)
	defer timer.Stop()
	<-timer.C
}

func (h *Hub) aiActionData(p *game.Player, action game.Action, amount, betAmount int, reasoning string, showAIThinking bool) AIActionData {
	data := AIActionData{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Action:     action.String(),
		Amount:     amount,
		StackAfter: p.Stack,
		PotAfter:   h.engine.Pot(),
		BetAmount:  betAmount,
	}
	if showAIThinking && reasoning != "" {
		data.Reasoning = &reasoning
	}
	return data
}

// broadcast sends an event to every observer, best effort. A failed
// write prunes that observer; the rest are unaffected.
func (h *Hub) broadcast(event Event) {
	for o := range h.observers {
		if err := o.send(event); err != nil {
			h.logger.Debug("dropping observer after write failure", "error", err)
			delete(h.observers, o)
			_ = o.conn.Close()
		}
	}
}

// fail quarantines the game after an invariant violation. The engine is
// left untouched from here on; observers get an error frame.
func (h *Hub) fail(err error) {
	h.logger.Error("engine fault, quarantining game", "error", err)
	h.failed = true
	h.broadcast(Event{Type: TypeError, Data: ErrorData{Message: "internal game fault: " + err.Error()}})
}
