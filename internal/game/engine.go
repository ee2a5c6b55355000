package game

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Config carries the table rules and bookkeeping caps for one game
type Config struct {
	StartingStack      int
	SmallBlind         int
	BigBlind           int
	BlindEscalation    bool
	HandsPerBlindLevel int
	BlindMultiplier    float64
	EventHistoryCap    int
	HandHistoryCap     int
	LegacyHandCap      int
	Assertions         bool
}

// DefaultConfig returns the standard 1000-stack 5/10 table
func DefaultConfig() Config {
	return Config{
		StartingStack:      1000,
		SmallBlind:         5,
		BigBlind:           10,
		BlindEscalation:    true,
		HandsPerBlindLevel: 10,
		BlindMultiplier:    2.0,
		EventHistoryCap:    1000,
		HandHistoryCap:     100,
		LegacyHandCap:      50,
		Assertions:         true,
	}
}

// aiNamePool provides display names for AI seats
var aiNamePool = []string{
	"AI-ce", "AI-ron", "AI-nstein",
	"Chip Checker", "The Algorithm", "Beta Bluffer", "Neural Net",
	"Deep Blue", "Data Dealer", "Binary Bob", "Quantum Quinn",
	"All-In Annie", "Fold Franklin", "Raise Rachel", "Call Carl",
	"Bluff Master", "The Calculator", "Lady Luck", "Card Shark",
	"Cool Hand Luke", "The Professor", "Wild Card", "Stone Face",
	"The Grinder", "Risk Taker", "The Rock", "Loose Lucy",
	"The Oracle", "Monte Carlo",
}

// Engine is the authoritative state machine for one game. It exclusively
// owns the players, deck, community cards, pot and event buffers; all
// mutation routes through ApplyAction, StartHand and AdvanceState. The
// engine itself is not goroutine-safe - callers serialize access behind a
// per-game lock.
type Engine struct {
	players []*Player
	deck    *deck.Deck
	eval    *evaluator.Evaluator
	rng     *rand.Rand
	logger  *log.Logger
	config  Config

	communityCards []deck.Card
	pot            int
	currentBet     int
	phase          Phase

	dealerIndex     int
	smallBlindIndex int
	bigBlindIndex   int
	currentIndex    int
	lastRaiserIndex int
	lastRaiseAmount int // 0 means unset; the next minimum raise falls back to the big blind

	handCount  int
	smallBlind int
	bigBlind   int
	sessionID  string
	totalChips int

	currentHandEvents []HandEvent
	handEvents        []HandEvent
	lastAIDecisions   map[string]AIDecision

	completedHands  []CompletedHand
	handHistory     []CompletedHand
	lastHandSummary *CompletedHand

	currentRoundActions []ActionRecord
	handBettingRounds   []BettingRound
	potAtRoundStart     int
}

// NewGame creates a table with one human seat and aiCount AI seats. AI
// names and personalities are drawn without replacement from their pools.
func NewGame(humanName string, aiCount int, cfg Config, rng *rand.Rand, logger *log.Logger) (*Engine, error) {
	if aiCount < 1 || aiCount > 3 {
		return nil, fmt.Errorf("ai count must be between 1 and 3, got %d", aiCount)
	}

	g := &Engine{
		rng:             rng,
		eval:            evaluator.New(rng),
		deck:            deck.New(rng),
		logger:          logger,
		config:          cfg,
		phase:           PreFlop,
		smallBlind:      cfg.SmallBlind,
		bigBlind:        cfg.BigBlind,
		dealerIndex:     0,
		smallBlindIndex: noSeat,
		bigBlindIndex:   noSeat,
		currentIndex:    noSeat,
		lastRaiserIndex: noSeat,
		sessionID:       uuid.New().String(),
		lastAIDecisions: map[string]AIDecision{},
	}

	g.players = append(g.players, NewPlayer("human", humanName, true, cfg.StartingStack))

	nameIdx := rng.Perm(len(aiNamePool))
	persIdx := rng.Perm(len(Personalities))
	for i := 0; i < aiCount; i++ {
		p := NewPlayer(fmt.Sprintf("ai%d", i+1), aiNamePool[nameIdx[i]], false, cfg.StartingStack)
		p.Personality = Personalities[persIdx[i]]
		g.players = append(g.players, p)
	}

	for _, p := range g.players {
		g.totalChips += p.Stack
	}

	return g, nil
}

// StartHand begins a new hand: rotates the button, posts blinds, deals
// hole cards and, when processAI is set, drives AI turns up to the next
// human decision or showdown.
func (g *Engine) StartHand(processAI bool) error {
	g.defensivePotAward()
	g.flushHandEvents()

	g.handCount++
	g.maybeIncreaseBlinds()

	g.lastAIDecisions = map[string]AIDecision{}
	g.currentRoundActions = nil
	g.handBettingRounds = nil
	g.potAtRoundStart = 0

	for _, p := range g.players {
		p.ResetForNewHand()
	}

	g.communityCards = nil
	g.pot = 0
	g.currentBet = 0
	g.phase = PreFlop
	g.lastRaiserIndex = noSeat
	g.lastRaiseAmount = 0

	g.deck.Reset()
	for _, p := range g.players {
		if !p.IsActive {
			continue
		}
		cards, err := g.deck.Deal(2)
		if err != nil {
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		p.HoleCards = cards
		g.logEvent(EventDeal, p.ID, "hole_cards", 0, 0, "dealt 2 hole cards")
	}

	_, bbIndex, err := g.postBlinds()
	if err != nil {
		return err
	}

	if err := g.assertChipConservation("after postBlinds"); err != nil {
		return err
	}

	if bbIndex != noSeat {
		g.currentIndex = g.nextEligible(bbIndex + 1)
	} else {
		g.currentIndex = noSeat
	}

	if processAI {
		if err := g.processRemainingActions(); err != nil {
			return err
		}
	}

	if _, err := g.AdvanceState(processAI); err != nil {
		return err
	}

	return g.checkInvariants("after StartHand")
}

// defensivePotAward recovers an undistributed pot from a previous hand.
// A conforming hand never leaves chips behind, but the award keeps chip
// conservation intact if one ever does.
func (g *Engine) defensivePotAward() {
	if g.pot == 0 {
		return
	}

	var winner *Player
	for _, p := range g.players {
		if p.IsActive {
			winner = p
			break
		}
	}
	if winner == nil {
		for _, p := range g.players {
			if p.Stack >= 0 {
				winner = p
				break
			}
		}
	}
	if winner == nil {
		return
	}

	g.logger.Error("pot left over from previous hand, awarding defensively",
		"pot", g.pot, "winner", winner.Name)
	amount := g.pot
	winner.Stack += amount
	if winner.Stack > 0 && winner.AllIn {
		winner.AllIn = false
	}
	g.logEvent(EventPotAward, winner.ID, awardDefensive, amount, 0,
		fmt.Sprintf("defensive pot award: %s receives %d", winner.Name, amount))
	g.pot = 0
}

func (g *Engine) maybeIncreaseBlinds() {
	if !g.config.BlindEscalation {
		return
	}
	n := g.config.HandsPerBlindLevel
	if g.handCount > n && (g.handCount-1)%n == 0 {
		oldSB, oldBB := g.smallBlind, g.bigBlind
		g.smallBlind = int(float64(g.smallBlind) * g.config.BlindMultiplier)
		g.bigBlind = int(float64(g.bigBlind) * g.config.BlindMultiplier)
		g.logger.Info("blinds increased", "hand", g.handCount,
			"small_blind", g.smallBlind, "big_blind", g.bigBlind)
		g.logEvent(EventBlindIncrease, "system", "increase", 0, 0,
			fmt.Sprintf("blinds increased from %d/%d to %d/%d", oldSB, oldBB, g.smallBlind, g.bigBlind))
	}
}

// postBlinds advances the dealer button past busted seats and posts the
// blinds. Heads-up, the dealer posts the small blind. Short stacks post
// partial blinds all-in; the table bet is the amount the big blind
// actually posted.
func (g *Engine) postBlinds() (int, int, error) {
	chipped := 0
	for _, p := range g.players {
		if p.Stack > 0 {
			chipped++
		}
	}
	if chipped < 2 {
		g.pot = 0
		g.currentBet = 0
		g.smallBlindIndex = noSeat
		g.bigBlindIndex = noSeat
		return noSeat, noSeat, nil
	}

	g.dealerIndex = g.nextChipped(g.dealerIndex + 1)

	var sbIndex, bbIndex int
	if chipped == 2 {
		sbIndex = g.dealerIndex
		bbIndex = g.nextChippedExcept(sbIndex+1, sbIndex)
	} else {
		sbIndex = g.nextChipped(g.dealerIndex + 1)
		bbIndex = g.nextChipped(sbIndex + 1)
	}

	if sbIndex == bbIndex {
		return noSeat, noSeat, &InvariantError{
			Context: "postBlinds",
			Reasons: []string{fmt.Sprintf("small and big blind landed on the same seat %d", sbIndex)},
		}
	}

	sbAmount := g.players[sbIndex].Bet(g.smallBlind)
	bbAmount := g.players[bbIndex].Bet(g.bigBlind)
	g.pot += sbAmount + bbAmount

	g.currentBet = bbAmount
	g.lastRaiserIndex = bbIndex
	g.lastRaiseAmount = g.bigBlind
	g.smallBlindIndex = sbIndex
	g.bigBlindIndex = bbIndex

	g.logger.Debug("blinds posted",
		"dealer", g.dealerIndex, "sb", sbIndex, "bb", bbIndex,
		"sb_amount", sbAmount, "bb_amount", bbAmount)

	return sbIndex, bbIndex, nil
}

func (g *Engine) nextChipped(from int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		if g.players[idx].Stack > 0 {
			return idx
		}
	}
	return noSeat
}

func (g *Engine) nextChippedExcept(from, except int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		if idx != except && g.players[idx].Stack > 0 {
			return idx
		}
	}
	return noSeat
}

// nextEligible returns the next seat from the given index that is active
// and able to act, or noSeat.
func (g *Engine) nextEligible(from int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		p := g.players[idx]
		if p.IsActive && !p.AllIn {
			return idx
		}
	}
	return noSeat
}

// ApplyAction is the single source of truth for action processing. It
// validates and applies one action for the given seat, returning what
// happened. Rejected actions leave the engine untouched so the caller can
// retry or fall back. Errors are invariant violations and are fatal for
// the hand.
func (g *Engine) ApplyAction(seat int, action Action, amount int, handStrength float64, reasoning string) (ActionResult, error) {
	if action < Fold || action > Raise {
		return ActionResult{Error: fmt.Sprintf("invalid action: %d", action)}, nil
	}
	if seat < 0 || seat >= len(g.players) {
		return ActionResult{Error: fmt.Sprintf("invalid seat index: %d", seat)}, nil
	}

	player := g.players[seat]
	result := ActionResult{Success: true}

	switch action {
	case Fold:
		player.IsActive = false
		player.HasActed = true
		if reasoning == "" {
			reasoning = fmt.Sprintf("%s folded", player.Name)
		}
		g.logEvent(EventAction, player.ID, "fold", 0, handStrength, reasoning)

		if g.activeCount() <= 1 {
			result.TriggersShowdown = true
			g.resolveFoldCollapse()
		}

	case Call:
		callAmount := g.currentBet - player.CurrentBet
		result.BetAmount = player.Bet(callAmount)
		g.pot += result.BetAmount
		player.HasActed = true
		if reasoning == "" {
			reasoning = fmt.Sprintf("%s called %d", player.Name, callAmount)
		}
		g.logEvent(EventAction, player.ID, "call", result.BetAmount, handStrength, reasoning)

	case Raise:
		minRaiseIncrement := g.lastRaiseAmount
		if minRaiseIncrement <= 0 {
			minRaiseIncrement = g.bigBlind
		}
		minRaise := g.currentBet + minRaiseIncrement

		if amount < minRaise {
			maxPossible := player.Stack + player.CurrentBet
			if amount >= player.Stack || amount >= maxPossible {
				// An all-in for less than a full raise is a call; it does
				// not reopen the action.
				callAmount := g.currentBet - player.CurrentBet
				result.BetAmount = player.Bet(callAmount)
				g.pot += result.BetAmount
				player.HasActed = true
				g.logEvent(EventAction, player.ID, "call", result.BetAmount, handStrength,
					fmt.Sprintf("%s called all-in for %d", player.Name, result.BetAmount))
			} else {
				return ActionResult{Error: fmt.Sprintf("raise amount %d below minimum %d", amount, minRaise)}, nil
			}
		} else {
			increment := amount - player.CurrentBet
			if increment > player.Stack {
				increment = player.Stack
			}
			result.BetAmount = player.Bet(increment)
			g.pot += result.BetAmount

			previousBet := g.currentBet
			g.currentBet = amount
			g.lastRaiseAmount = amount - previousBet
			g.lastRaiserIndex = seat
			player.HasActed = true

			// Everyone else now owes a response to the raise.
			for i, p := range g.players {
				if i != seat && p.IsActive && !p.AllIn {
					p.HasActed = false
				}
			}

			if reasoning == "" {
				reasoning = fmt.Sprintf("%s raised to %d", player.Name, g.currentBet)
			}
			g.logEvent(EventAction, player.ID, "raise", result.BetAmount, handStrength, reasoning)
		}
	}

	if result.Success && action != Fold {
		g.currentRoundActions = append(g.currentRoundActions, ActionRecord{
			PlayerID:    player.ID,
			PlayerName:  player.Name,
			Action:      action.String(),
			Amount:      result.BetAmount,
			StackBefore: player.Stack + result.BetAmount,
			StackAfter:  player.Stack,
			PotBefore:   g.pot - result.BetAmount,
			PotAfter:    g.pot,
			Reasoning:   reasoning,
		})
	}

	// Only conservation is checked here: the turn has not advanced yet,
	// so the acting seat may legitimately be folded or all-in while still
	// marked current. The full state assertion runs once callers move on.
	if err := g.assertChipConservation(fmt.Sprintf("after ApplyAction(%s)", action)); err != nil {
		return result, err
	}

	return result, nil
}

// resolveFoldCollapse ends the hand when folding has left at most one
// player: the survivor takes the whole pot.
func (g *Engine) resolveFoldCollapse() {
	potAwarded := 0
	var winnerID string

	for _, p := range g.players {
		if p.IsActive {
			winnerID = p.ID
			potAwarded = g.pot
			p.Stack += g.pot
			if p.Stack > 0 && p.AllIn {
				p.AllIn = false
			}
			g.logEvent(EventPotAward, p.ID, awardWinByFold, g.pot, 0,
				fmt.Sprintf("%s wins %d (all others folded)", p.Name, g.pot))
			g.pot = 0
			break
		}
	}

	var winnerIDs []string
	if winnerID != "" {
		winnerIDs = []string{winnerID}
	}
	g.saveCompletedHand(potAwarded, winnerIDs, false)

	g.phase = Showdown
	g.currentIndex = noSeat
}

// SubmitHumanAction validates that it is the human's turn and routes the
// action through ApplyAction. With processAI set, AI turns are driven
// synchronously up to the next human decision or showdown.
func (g *Engine) SubmitHumanAction(action Action, amount int, processAI bool) (ActionResult, error) {
	humanIndex := noSeat
	var human *Player
	for i, p := range g.players {
		if p.IsHuman {
			humanIndex, human = i, p
			break
		}
	}
	if human == nil {
		return ActionResult{Error: "no human player in game"}, nil
	}

	if g.currentIndex != humanIndex {
		return ActionResult{Error: "not your turn"}, nil
	}
	if !human.IsActive && action != Fold {
		return ActionResult{Error: "player is not active"}, nil
	}

	handStrength := 0.0
	if len(human.HoleCards) > 0 {
		score, _ := g.eval.Evaluate(human.HoleCards, g.communityCards)
		handStrength = evaluator.ScoreToStrength(score)
	}

	result, err := g.ApplyAction(humanIndex, action, amount, handStrength, fmt.Sprintf("human %s", action))
	if err != nil || !result.Success {
		return result, err
	}

	if result.TriggersShowdown {
		return result, nil
	}

	g.currentIndex = g.nextEligible(humanIndex + 1)

	if processAI {
		if err := g.processRemainingActions(); err != nil {
			return result, err
		}
		if _, err := g.AdvanceState(true); err != nil {
			return result, err
		}
	}

	if err := g.checkInvariants("after SubmitHumanAction"); err != nil {
		return result, err
	}

	return result, nil
}

// turn driver limits. The same-seat guard catches a rejected action that
// somehow failed to advance the turn before it can spin forever.
const (
	maxDriverIterations = 100
	maxSameSeatRepeats  = 5
)

// processRemainingActions drives AI turns until the betting round
// completes or the human must act.
func (g *Engine) processRemainingActions() error {
	iterations := 0
	lastSeat := noSeat
	sameSeat := 0

	for !g.BettingRoundComplete() {
		iterations++
		if iterations > maxDriverIterations {
			g.logger.Error("ai driver exceeded iteration limit", "iterations", iterations)
			break
		}

		if g.currentIndex == noSeat {
			break
		}
		if g.currentIndex == lastSeat {
			sameSeat++
			if sameSeat > maxSameSeatRepeats {
				g.logger.Error("ai driver stuck on seat", "seat", g.currentIndex)
				break
			}
		} else {
			sameSeat = 0
		}
		lastSeat = g.currentIndex

		current := g.players[g.currentIndex]

		if current.IsHuman && !current.HasActed && !current.AllIn {
			break
		}
		if current.IsHuman {
			g.currentIndex = g.nextEligible(g.currentIndex + 1)
			continue
		}

		if current.IsActive && !current.AllIn {
			if _, err := g.applyAIAction(g.currentIndex); err != nil {
				return err
			}
		}

		if g.currentIndex == noSeat {
			break
		}

		g.currentIndex = g.nextEligible(g.currentIndex + 1)
	}

	return nil
}

// applyAIAction computes, stores and applies one AI decision for the
// seat. A rejected decision falls back to a fold so the hand always makes
// progress.
func (g *Engine) applyAIAction(seat int) (ActionResult, error) {
	decision := g.ComputeAIDecision(seat)

	result, err := g.ApplyAction(seat, decision.Action, decision.Amount, decision.HandStrength, decision.Reasoning)
	if err != nil {
		return result, err
	}
	if !result.Success {
		g.logger.Error("ai action rejected, falling back to fold",
			"player", g.players[seat].Name, "action", decision.Action, "error", result.Error)
		result, err = g.ApplyAction(seat, Fold, 0, decision.HandStrength,
			fmt.Sprintf("fallback fold: %s rejected (%s)", decision.Action, result.Error))
	}
	return result, err
}

// ComputeAIDecision evaluates the AI policy for a seat and records the
// decision for observers.
func (g *Engine) ComputeAIDecision(seat int) AIDecision {
	p := g.players[seat]
	decision := Decide(g.rng, g.eval, p.Personality, p.HoleCards, g.communityCards,
		g.currentBet, g.pot, p.Stack, p.CurrentBet, g.bigBlind, g.lastRaiseAmount)
	g.lastAIDecisions[p.ID] = decision
	return decision
}

// BettingRoundComplete reports whether the current betting round is over.
// Pre-flop the big blind keeps the option to raise even after everyone
// merely called.
func (g *Engine) BettingRoundComplete() bool {
	var canAct []*Player
	inHand := 0
	for _, p := range g.players {
		if p.IsActive {
			inHand++
			if !p.AllIn {
				canAct = append(canAct, p)
			}
		}
	}

	if len(canAct) == 0 {
		return true
	}

	if len(canAct) == 1 {
		if inHand > 1 {
			// Others are all-in; the last player able to act still must.
			return canAct[0].HasActed
		}
		return true
	}

	for _, p := range canAct {
		if !p.HasActed || p.CurrentBet != g.currentBet {
			return false
		}
	}

	if g.phase == PreFlop && g.lastRaiserIndex != noSeat {
		bb := g.players[g.lastRaiserIndex]
		if bb.IsActive && !bb.AllIn && g.bbActionCount(bb.ID) == 0 {
			return false
		}
	}

	return true
}

// bbActionCount counts the big blind's voluntary actions this hand; the
// posted blind is not logged as an event, so it does not count.
func (g *Engine) bbActionCount(playerID string) int {
	count := 0
	for _, e := range g.currentHandEvents {
		if e.PlayerID != playerID || e.Kind != EventAction {
			continue
		}
		switch e.Action {
		case "check", "call", "raise", "fold":
			count++
		}
	}
	return count
}

// AdvanceState performs any applicable end-of-round transition and
// reports whether state changed. With processAI set it also drives AI
// turns into the new round and recurses until the hand needs human input
// or ends. It is the single state-advancement entry point for both the
// synchronous and the WebSocket-driven paths.
func (g *Engine) AdvanceState(processAI bool) (bool, error) {
	if g.phase == Showdown {
		return false, nil
	}

	activeCount := g.activeCount()

	// No seat can act: force resolution rather than stall the hand. With
	// several players still in, the board runs out before the pots are
	// resolved so showdown always compares full seven-card hands.
	if g.currentIndex == noSeat {
		if g.pot > 0 {
			if activeCount == 1 {
				g.creditSoleActive()
			} else if activeCount > 1 {
				if err := g.dealRemainingBoard(); err != nil {
					return false, err
				}
				g.phase = Showdown
				if err := g.awardPotAtShowdown(); err != nil {
					return true, err
				}
				return true, nil
			}
		}
		g.phase = Showdown
		return true, nil
	}

	// Everyone folded out: recover by crediting the last actor on record.
	if activeCount == 0 {
		g.creditLastActor()
		g.phase = Showdown
		g.currentIndex = noSeat
		return true, nil
	}

	if activeCount == 1 {
		potAwarded := g.pot
		var winnerID string
		if g.pot > 0 {
			winner := g.soleActive()
			winnerID = winner.ID
			winner.Stack += g.pot
			if winner.Stack > 0 && winner.AllIn {
				winner.AllIn = false
			}
			g.logEvent(EventPotAward, winner.ID, awardWinByFold, g.pot, 0,
				fmt.Sprintf("%s wins %d (all others folded)", winner.Name, g.pot))
			g.pot = 0
		}
		var winnerIDs []string
		if winnerID != "" {
			winnerIDs = []string{winnerID}
		}
		g.saveCompletedHand(potAwarded, winnerIDs, false)
		g.phase = Showdown
		g.currentIndex = noSeat
		return true, nil
	}

	// All-in fast-forward: nobody (or only one player) can still bet, so
	// run the board out in one pass and resolve.
	canAct := 0
	for _, p := range g.players {
		if p.IsActive && !p.AllIn {
			canAct++
		}
	}
	if canAct <= 1 {
		if err := g.dealRemainingBoard(); err != nil {
			return false, err
		}
		g.phase = Showdown
		if err := g.awardPotAtShowdown(); err != nil {
			return true, err
		}
		g.currentIndex = noSeat
		return true, g.checkInvariants("after all-in fast-forward")
	}

	if !g.BettingRoundComplete() {
		return false, nil
	}

	g.closeBettingRound()

	var err error
	switch g.phase {
	case PreFlop:
		g.phase = Flop
		err = g.dealCommunity(3)
	case Flop:
		g.phase = Turn
		err = g.dealCommunity(1)
	case Turn:
		g.phase = River
		err = g.dealCommunity(1)
	case River:
		g.phase = Showdown
		if err := g.awardPotAtShowdown(); err != nil {
			return true, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	for _, p := range g.players {
		p.ResetForNewRound()
	}
	g.currentBet = 0
	g.lastRaiserIndex = noSeat
	g.lastRaiseAmount = 0
	g.potAtRoundStart = g.pot

	g.currentIndex = g.nextEligible(g.dealerIndex + 1)

	if processAI {
		if err := g.processRemainingActions(); err != nil {
			return true, err
		}
		if _, err := g.AdvanceState(true); err != nil {
			return true, err
		}
	}

	return true, g.checkInvariants("after AdvanceState")
}

func (g *Engine) dealCommunity(n int) error {
	cards, err := g.deck.Deal(n)
	if err != nil {
		return fmt.Errorf("dealing community cards: %w", err)
	}
	g.communityCards = append(g.communityCards, cards...)
	return nil
}

func (g *Engine) dealRemainingBoard() error {
	switch g.phase {
	case PreFlop:
		return g.dealCommunity(5)
	case Flop:
		return g.dealCommunity(2)
	case Turn:
		return g.dealCommunity(1)
	}
	return nil
}

func (g *Engine) creditSoleActive() {
	winner := g.soleActive()
	if winner == nil {
		return
	}
	g.logEvent(EventPotAward, winner.ID, awardWinByFold, g.pot, 0,
		fmt.Sprintf("%s wins %d (no other players can act)", winner.Name, g.pot))
	winner.Stack += g.pot
	if winner.Stack > 0 && winner.AllIn {
		winner.AllIn = false
	}
	g.pot = 0
}

func (g *Engine) creditLastActor() {
	if g.pot == 0 {
		return
	}
	for i := len(g.currentHandEvents) - 1; i >= 0; i-- {
		e := g.currentHandEvents[i]
		if e.Kind != EventAction {
			continue
		}
		winner := g.playerByID(e.PlayerID)
		if winner == nil {
			return
		}
		winner.Stack += g.pot
		winner.IsActive = true // reactivate for the credit
		if winner.Stack > 0 && winner.AllIn {
			winner.AllIn = false
		}
		g.logEvent(EventPotAward, winner.ID, awardWinByFold, g.pot, 0,
			fmt.Sprintf("all players folded - %s wins %d by default", winner.Name, g.pot))
		g.pot = 0
		return
	}
}

// awardPotAtShowdown resolves pots and credits winners. Indivisible
// remainders go one chip at a time to the earliest winners; any delta
// between the tracked pot and the layered totals goes to the first
// credited winner so conservation holds.
func (g *Engine) awardPotAtShowdown() error {
	if g.pot == 0 {
		return nil
	}

	originalPot := g.pot
	pots := ResolvePots(g.eval, g.players, g.communityCards)

	var allWinnerIDs []string
	var firstWinner *Player
	totalAwarded := 0
	for _, pot := range pots {
		numWinners := len(pot.WinnerIDs)
		if numWinners == 0 {
			continue
		}
		split := pot.Amount / numWinners
		remainder := pot.Amount % numWinners

		for i, winnerID := range pot.WinnerIDs {
			winner := g.playerByID(winnerID)
			award := split
			if i < remainder {
				award++
			}

			winner.Stack += award
			totalAwarded += award
			if winner.Stack > 0 && winner.AllIn {
				winner.AllIn = false
			}
			if firstWinner == nil {
				firstWinner = winner
			}

			allWinnerIDs = append(allWinnerIDs, winnerID)
			g.logEvent(EventPotAward, winnerID, awardWin, award, 0,
				fmt.Sprintf("%s wins %d at showdown", winner.Name, award))
		}
	}

	// Any shortfall between the tracked pot and the layered totals
	// (partial blinds, an unwinnable layer) goes to the first credited
	// winner to keep the chip total intact.
	if shortfall := originalPot - totalAwarded; shortfall > 0 {
		if firstWinner == nil {
			for _, p := range g.players {
				if p.IsActive || p.AllIn {
					firstWinner = p
					break
				}
			}
		}
		if firstWinner != nil {
			firstWinner.Stack += shortfall
			if firstWinner.Stack > 0 && firstWinner.AllIn {
				firstWinner.AllIn = false
			}
			g.logEvent(EventPotAward, firstWinner.ID, awardWin, shortfall, 0,
				fmt.Sprintf("%s receives %d remainder at showdown", firstWinner.Name, shortfall))
			allWinnerIDs = append(allWinnerIDs, firstWinner.ID)
		}
	}

	g.pot = 0
	g.saveCompletedHand(originalPot, dedupe(allWinnerIDs), true)

	return g.checkInvariants("after awardPotAtShowdown")
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (g *Engine) activeCount() int {
	n := 0
	for _, p := range g.players {
		if p.IsActive {
			n++
		}
	}
	return n
}

func (g *Engine) soleActive() *Player {
	for _, p := range g.players {
		if p.IsActive {
			return p
		}
	}
	return nil
}

func (g *Engine) playerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Engine) humanPlayer() *Player {
	for _, p := range g.players {
		if p.IsHuman {
			return p
		}
	}
	return nil
}
