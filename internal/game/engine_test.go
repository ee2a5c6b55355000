package game

import (
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, seed int64, aiCount int) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BlindEscalation = false
	rng := rand.New(rand.NewSource(seed))
	g, err := NewGame("Human", aiCount, cfg, rng, log.New(io.Discard))
	require.NoError(t, err)
	return g
}

func chipTotal(g *Engine) int {
	total := g.pot
	for _, p := range g.players {
		total += p.Stack
	}
	return total
}

func TestNewGameValidatesAICount(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	logger := log.New(io.Discard)

	for _, count := range []int{0, -1, 4, 10} {
		_, err := NewGame("Human", count, DefaultConfig(), rng, logger)
		assert.Error(t, err, "ai count %d should be rejected", count)
	}

	g, err := NewGame("Human", 3, DefaultConfig(), rng, logger)
	require.NoError(t, err)
	assert.Len(t, g.players, 4)
	assert.Equal(t, 4000, g.totalChips)

	// Distinct names and personalities per game
	names := map[string]bool{}
	personalities := map[Personality]bool{}
	for _, p := range g.players[1:] {
		assert.False(t, names[p.Name], "duplicate AI name %q", p.Name)
		assert.False(t, personalities[p.Personality], "duplicate personality %q", p.Personality)
		names[p.Name] = true
		personalities[p.Personality] = true
	}
}

func TestStartHandPostsBlinds(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 1, 3)
	require.NoError(t, g.StartHand(false))

	// Button moves off seat 0 for the first hand
	assert.Equal(t, 1, g.dealerIndex)
	assert.Equal(t, 2, g.smallBlindIndex)
	assert.Equal(t, 3, g.bigBlindIndex)
	assert.Equal(t, 15, g.pot)
	assert.Equal(t, 10, g.currentBet)
	assert.Equal(t, 10, g.lastRaiseAmount)
	assert.Equal(t, 3, g.lastRaiserIndex)
	assert.Equal(t, 0, g.currentIndex, "first to act is after the big blind")
	assert.Equal(t, 4000, chipTotal(g))

	for _, p := range g.players {
		assert.Len(t, p.HoleCards, 2)
	}
}

func TestHeadsUpDealerPostsSmallBlind(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 2, 1)
	require.NoError(t, g.StartHand(false))

	assert.Equal(t, g.dealerIndex, g.smallBlindIndex, "heads-up dealer posts the small blind")
	assert.NotEqual(t, g.smallBlindIndex, g.bigBlindIndex)
	// Heads-up pre-flop, the small blind acts first
	assert.Equal(t, g.smallBlindIndex, g.currentIndex)
}

func TestShortStackPostsPartialBlind(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 3, 2)
	// Seat 0 will be the big blind on the first hand (dealer 1, sb 2)
	g.players[0].Stack = 7
	g.totalChips = 7 + 1000 + 1000

	require.NoError(t, g.StartHand(false))

	require.Equal(t, 0, g.bigBlindIndex)
	bb := g.players[0]
	assert.Equal(t, 7, g.currentBet, "table bet is the actual amount posted")
	assert.True(t, bb.AllIn)
	assert.Equal(t, 0, bb.Stack)
	assert.Equal(t, chipTotal(g), g.totalChips)
}

func TestFoldAroundAwardsPotToBigBlind(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 4, 3)
	require.NoError(t, g.StartHand(false))

	// Seats: dealer 1, SB 2, BB 3; human (0) acts first
	result, err := g.SubmitHumanAction(Fold, 0, false)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 1, g.currentIndex)

	result, err = g.ApplyAction(1, Fold, 0, 0, "")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.TriggersShowdown)
	g.currentIndex = g.nextEligible(2)

	result, err = g.ApplyAction(2, Fold, 0, 0, "")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.TriggersShowdown, "third fold leaves one player")

	assert.Equal(t, Showdown, g.phase)
	assert.Equal(t, noSeat, g.currentIndex)
	assert.Equal(t, 0, g.pot)
	assert.Equal(t, 1000, g.players[0].Stack)
	assert.Equal(t, 1000, g.players[1].Stack)
	assert.Equal(t, 995, g.players[2].Stack)
	assert.Equal(t, 1005, g.players[3].Stack)
	assert.Equal(t, 4000, chipTotal(g))

	last := g.currentHandEvents[len(g.currentHandEvents)-1]
	assert.Equal(t, EventPotAward, last.Kind)
	assert.Equal(t, "win_by_fold", last.Action)
	assert.True(t, last.WonByFold())
	assert.Equal(t, g.players[3].ID, last.PlayerID)

	require.NotNil(t, g.lastHandSummary)
	assert.Equal(t, []string{g.players[3].ID}, g.lastHandSummary.WinnerIDs)
	assert.Empty(t, g.lastHandSummary.ShowdownHands, "fold win reveals no hands")
}

func TestBBOptionPreflop(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 5, 3)
	require.NoError(t, g.StartHand(false))

	// Everyone calls around to the big blind
	for _, seat := range []int{0, 1, 2} {
		result, err := g.ApplyAction(seat, Call, 0, 0, "")
		require.NoError(t, err)
		require.True(t, result.Success)
	}
	g.currentIndex = 3

	require.False(t, g.BettingRoundComplete(),
		"big blind has only posted the blind and must get the option")

	// Even with a stale has_acted flag, the option holds: the BB has no
	// voluntary action in the event log yet.
	g.players[3].HasActed = true
	require.False(t, g.BettingRoundComplete())
	g.players[3].HasActed = false

	// BB exercises the option
	result, err := g.ApplyAction(3, Raise, 30, 0, "")
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, 30, g.currentBet)
	assert.Equal(t, 20, g.lastRaiseAmount)
	for _, seat := range []int{0, 1, 2} {
		assert.False(t, g.players[seat].HasActed,
			"seat %d owes a response after the raise", seat)
	}
	assert.False(t, g.BettingRoundComplete())

	// Callers close the round; the BB has now acted so it completes
	for _, seat := range []int{0, 1, 2} {
		_, err := g.ApplyAction(seat, Call, 0, 0, "")
		require.NoError(t, err)
	}
	assert.True(t, g.BettingRoundComplete())
}

func TestRejectedRaiseBelowMinimum(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 6, 3)
	require.NoError(t, g.StartHand(false))

	potBefore := g.pot
	result, err := g.ApplyAction(0, Raise, 12, 0, "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "below minimum")
	assert.False(t, g.players[0].HasActed, "failed action must not set has_acted")
	assert.Equal(t, potBefore, g.pot)
	assert.Equal(t, 0, g.currentIndex, "failed action must not advance the turn")
	assert.Equal(t, 10, g.currentBet)
}

func TestRaiseResetsOtherPlayersActed(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 7, 3)
	require.NoError(t, g.StartHand(false))

	_, err := g.ApplyAction(1, Call, 0, 0, "")
	require.NoError(t, err)
	assert.True(t, g.players[1].HasActed)

	result, err := g.ApplyAction(0, Raise, 30, 0, "")
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.True(t, g.players[0].HasActed)
	for _, seat := range []int{1, 2, 3} {
		assert.False(t, g.players[seat].HasActed, "seat %d", seat)
	}
	assert.Equal(t, 0, g.lastRaiserIndex)
	assert.Equal(t, 20, g.lastRaiseAmount)
}

func TestSubmitHumanActionOutOfTurn(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 8, 3)
	require.NoError(t, g.StartHand(false))

	g.currentIndex = 1
	result, err := g.SubmitHumanAction(Call, 0, false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not your turn")
}

func TestApplyActionValidatesSeat(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 9, 3)
	require.NoError(t, g.StartHand(false))

	for _, seat := range []int{-1, 4, 99} {
		result, err := g.ApplyAction(seat, Call, 0, 0, "")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid seat index")
	}
}

func TestChipConservationAcrossFoldedHands(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 10, 3)

	for hand := 0; hand < 30; hand++ {
		require.NoError(t, g.StartHand(true))

		for i := 0; i < 20 && g.phase != Showdown; i++ {
			current := g.CurrentPlayer()
			if current == nil || !current.IsHuman {
				break
			}
			_, err := g.SubmitHumanAction(Fold, 0, true)
			require.NoError(t, err)
		}

		require.Equal(t, 4000, chipTotal(g), "hand %d leaked chips", hand)
		require.NoError(t, g.checkInvariants("test"))
	}
}

func TestBlindEscalation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HandsPerBlindLevel = 2
	rng := rand.New(rand.NewSource(11))
	g, err := NewGame("Human", 3, cfg, rng, log.New(io.Discard))
	require.NoError(t, err)

	blinds := make(map[int]int)
	for hand := 1; hand <= 5; hand++ {
		require.NoError(t, g.StartHand(false))
		blinds[hand] = g.bigBlind
	}

	assert.Equal(t, 10, blinds[1])
	assert.Equal(t, 10, blinds[2])
	assert.Equal(t, 20, blinds[3], "blinds double after the first level")
	assert.Equal(t, 20, blinds[4])
	assert.Equal(t, 40, blinds[5])
	assert.Equal(t, 4000, chipTotal(g), "escalation must not create chips")
}

func TestDefensivePotAwardRecoversLeftoverPot(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 12, 3)
	require.NoError(t, g.StartHand(false))
	require.Equal(t, 15, g.pot, "blinds in the pot")

	// Abandon the hand mid-flight; the next StartHand must recover the pot
	require.NoError(t, g.StartHand(false))
	assert.Equal(t, 4000, chipTotal(g))

	found := false
	for _, e := range g.handEvents {
		if e.Kind == EventPotAward && e.Action == "defensive_award" {
			found = true
			break
		}
	}
	assert.True(t, found, "defensive award should be recorded in history")
}

func TestEventHistoryBounded(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BlindEscalation = false
	cfg.EventHistoryCap = 10
	cfg.HandHistoryCap = 3
	cfg.LegacyHandCap = 2
	rng := rand.New(rand.NewSource(13))
	g, err := NewGame("Human", 3, cfg, rng, log.New(io.Discard))
	require.NoError(t, err)

	for hand := 0; hand < 8; hand++ {
		require.NoError(t, g.StartHand(true))
		for i := 0; i < 20 && g.phase != Showdown; i++ {
			current := g.CurrentPlayer()
			if current == nil || !current.IsHuman {
				break
			}
			_, err := g.SubmitHumanAction(Fold, 0, true)
			require.NoError(t, err)
		}
	}

	assert.LessOrEqual(t, len(g.handEvents), 10)
	assert.LessOrEqual(t, len(g.handHistory), 3)
	assert.LessOrEqual(t, len(g.completedHands), 2)
}

func TestAnalyzeLastHand(t *testing.T) {
	t.Parallel()

	g := newTestEngine(t, 14, 3)
	assert.Nil(t, g.AnalyzeLastHand(), "no hand completed yet")

	require.NoError(t, g.StartHand(false))
	_, err := g.SubmitHumanAction(Fold, 0, false)
	require.NoError(t, err)
	for seat := 1; g.phase != Showdown && seat <= 2; seat++ {
		_, err := g.ApplyAction(seat, Fold, 0, 0, "")
		require.NoError(t, err)
	}

	analysis := g.AnalyzeLastHand()
	require.NotNil(t, analysis)
	assert.Equal(t, "fold", analysis.YourAction)
	assert.False(t, analysis.YouWon)
	assert.Equal(t, 1, analysis.HandNumber)
	assert.Len(t, analysis.YourCards, 2)
}
