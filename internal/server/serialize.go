package server

import (
	"sort"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/game"
)

// StatePayload is the authoritative state_update snapshot
type StatePayload struct {
	State              string                     `json:"state"`
	Pot                int                        `json:"pot"`
	CurrentBet         int                        `json:"current_bet"`
	LastRaiseAmount    *int                       `json:"last_raise_amount"`
	SmallBlind         int                        `json:"small_blind"`
	BigBlind           int                        `json:"big_blind"`
	HandCount          int                        `json:"hand_count"`
	DealerPosition     *int                       `json:"dealer_position"`
	SmallBlindPosition *int                       `json:"small_blind_position"`
	BigBlindPosition   *int                       `json:"big_blind_position"`
	CurrentPlayerIndex *int                       `json:"current_player_index"`
	CommunityCards     []string                   `json:"community_cards"`
	Players            []PlayerPayload            `json:"players"`
	HumanPlayer        HumanPayload               `json:"human_player"`
	LastAIDecisions    map[string]DecisionPayload `json:"last_ai_decisions"`
	WinnerInfo         *WinnerInfo                `json:"winner_info"`
}

// PlayerPayload is one seat in the snapshot. Hole cards are concealed
// for non-human players until showdown.
type PlayerPayload struct {
	PlayerID    string   `json:"player_id"`
	Name        string   `json:"name"`
	Stack       int      `json:"stack"`
	CurrentBet  int      `json:"current_bet"`
	IsActive    bool     `json:"is_active"`
	AllIn       bool     `json:"all_in"`
	IsHuman     bool     `json:"is_human"`
	Personality *string  `json:"personality,omitempty"`
	HoleCards   []string `json:"hole_cards"`
}

// HumanPayload is the human seat's own view, hole cards included
type HumanPayload struct {
	PlayerID      string   `json:"player_id"`
	Name          string   `json:"name"`
	Stack         int      `json:"stack"`
	CurrentBet    int      `json:"current_bet"`
	HoleCards     []string `json:"hole_cards"`
	IsActive      bool     `json:"is_active"`
	IsCurrentTurn bool     `json:"is_current_turn"`
}

// DecisionPayload mirrors an AIDecision on the wire. The decision id is
// always present so observers can deduplicate retransmissions; the
// reasoning fields appear only when the observer opted into AI thinking.
type DecisionPayload struct {
	Action       string   `json:"action"`
	Amount       int      `json:"amount"`
	DecisionID   string   `json:"decision_id"`
	Reasoning    *string  `json:"reasoning,omitempty"`
	HandStrength *float64 `json:"hand_strength,omitempty"`
	PotOdds      *float64 `json:"pot_odds,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	SPR          *float64 `json:"spr,omitempty"`
}

// WinnerPayload is one credited winner
type WinnerPayload struct {
	PlayerID    string   `json:"player_id"`
	Name        string   `json:"name"`
	Amount      int      `json:"amount"`
	IsHuman     bool     `json:"is_human"`
	Personality *string  `json:"personality,omitempty"`
	WonByFold   bool     `json:"won_by_fold"`
	HandRank    *string  `json:"hand_rank,omitempty"`
	HoleCards   []string `json:"hole_cards,omitempty"`
}

// ShowdownHandPayload is one revealed hand, listed best-first
type ShowdownHandPayload struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	HandRank  string   `json:"hand_rank"`
	HoleCards []string `json:"hole_cards"`
	AmountWon int      `json:"amount_won"`
	IsHuman   bool     `json:"is_human"`
}

// FoldedPlayerPayload is a seat that folded before showdown
type FoldedPlayerPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsHuman  bool   `json:"is_human"`
}

// WinnerInfo is populated once the hand's pot has been awarded
type WinnerInfo struct {
	Winners          []WinnerPayload       `json:"winners"`
	AllShowdownHands []ShowdownHandPayload `json:"all_showdown_hands"`
	FoldedPlayers    []FoldedPlayerPayload `json:"folded_players"`
}

// serializeState builds the state_update payload from the engine. The
// caller holds the game lock.
func serializeState(g *game.Engine, showAIThinking bool) StatePayload {
	atShowdown := g.Phase() == game.Showdown

	players := make([]PlayerPayload, 0, len(g.Players()))
	for _, p := range g.Players() {
		pp := PlayerPayload{
			PlayerID:   p.ID,
			Name:       p.Name,
			Stack:      p.Stack,
			CurrentBet: p.CurrentBet,
			IsActive:   p.IsActive,
			AllIn:      p.AllIn,
			IsHuman:    p.IsHuman,
			HoleCards:  []string{},
		}
		if !p.IsHuman {
			personality := string(p.Personality)
			pp.Personality = &personality
		}
		if p.IsHuman || atShowdown {
			pp.HoleCards = deck.Strings(p.HoleCards)
		}
		players = append(players, pp)
	}

	human := g.HumanPlayer()
	humanPayload := HumanPayload{
		PlayerID:      human.ID,
		Name:          human.Name,
		Stack:         human.Stack,
		CurrentBet:    human.CurrentBet,
		HoleCards:     deck.Strings(human.HoleCards),
		IsActive:      human.IsActive,
		IsCurrentTurn: g.CurrentPlayer() == human,
	}

	decisions := make(map[string]DecisionPayload, len(g.LastAIDecisions()))
	for playerID, d := range g.LastAIDecisions() {
		dp := DecisionPayload{
			Action:     d.Action.String(),
			Amount:     d.Amount,
			DecisionID: d.DecisionID,
		}
		if showAIThinking {
			reasoning, strength, potOdds, confidence, spr := d.Reasoning, d.HandStrength, d.PotOdds, d.Confidence, d.SPR
			dp.Reasoning = &reasoning
			dp.HandStrength = &strength
			dp.PotOdds = &potOdds
			dp.Confidence = &confidence
			dp.SPR = &spr
		}
		decisions[playerID] = dp
	}

	sbPos, bbPos := g.BlindPositions()
	smallBlind, bigBlind := g.Blinds()

	return StatePayload{
		State:              g.Phase().String(),
		Pot:                g.Pot(),
		CurrentBet:         g.CurrentBet(),
		LastRaiseAmount:    optionalInt(g.LastRaiseAmount(), g.LastRaiseAmount() > 0),
		SmallBlind:         smallBlind,
		BigBlind:           bigBlind,
		HandCount:          g.HandCount(),
		DealerPosition:     optionalInt(g.DealerIndex(), g.HandCount() > 0),
		SmallBlindPosition: optionalInt(sbPos, sbPos >= 0),
		BigBlindPosition:   optionalInt(bbPos, bbPos >= 0),
		CurrentPlayerIndex: optionalInt(g.CurrentSeat(), g.CurrentSeat() >= 0),
		CommunityCards:     deck.Strings(g.CommunityCards()),
		Players:            players,
		HumanPlayer:        humanPayload,
		LastAIDecisions:    decisions,
		WinnerInfo:         buildWinnerInfo(g),
	}
}

func optionalInt(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

// buildWinnerInfo derives winner details from the hand's pot_award
// events. Whether a pot was won by fold comes from the award transition
// itself, not from whether hole cards happen to be recorded.
func buildWinnerInfo(g *game.Engine) *WinnerInfo {
	summary := g.LastHandSummary()

	var winners []WinnerPayload
	for _, e := range g.CurrentHandEvents() {
		if e.Kind != game.EventPotAward {
			continue
		}
		p := playerByID(g, e.PlayerID)
		if p == nil {
			continue
		}

		wp := WinnerPayload{
			PlayerID:  p.ID,
			Name:      p.Name,
			Amount:    e.Amount,
			IsHuman:   p.IsHuman,
			WonByFold: e.WonByFold(),
		}
		if !p.IsHuman {
			personality := string(p.Personality)
			wp.Personality = &personality
		}
		if !e.WonByFold() && summary != nil {
			if rank, ok := summary.HandRankings[p.ID]; ok {
				wp.HandRank = &rank
			}
			if cards, ok := summary.ShowdownHands[p.ID]; ok {
				wp.HoleCards = deck.Strings(cards)
			}
		}
		winners = append(winners, wp)
	}

	if len(winners) == 0 {
		return nil
	}

	info := &WinnerInfo{
		Winners:          winners,
		AllShowdownHands: []ShowdownHandPayload{},
		FoldedPlayers:    []FoldedPlayerPayload{},
	}

	if summary == nil || len(summary.ShowdownHands) == 0 {
		return info
	}

	type scored struct {
		payload ShowdownHandPayload
		score   int
	}
	var revealed []scored
	for _, p := range g.Players() {
		cards, ok := summary.ShowdownHands[p.ID]
		if !ok {
			info.FoldedPlayers = append(info.FoldedPlayers, FoldedPlayerPayload{
				PlayerID: p.ID,
				Name:     p.Name,
				IsHuman:  p.IsHuman,
			})
			continue
		}

		score := 0
		if len(cards) > 0 && len(g.CommunityCards()) > 0 {
			score, _ = g.Evaluator().Evaluate(cards, g.CommunityCards())
		}

		amountWon := 0
		for _, w := range winners {
			if w.PlayerID == p.ID {
				amountWon += w.Amount
			}
		}

		revealed = append(revealed, scored{
			payload: ShowdownHandPayload{
				PlayerID:  p.ID,
				Name:      p.Name,
				HandRank:  summary.HandRankings[p.ID],
				HoleCards: deck.Strings(cards),
				AmountWon: amountWon,
				IsHuman:   p.IsHuman,
			},
			score: score,
		})
	}

	sort.SliceStable(revealed, func(i, j int) bool {
		return revealed[i].score < revealed[j].score
	})
	for _, r := range revealed {
		info.AllShowdownHands = append(info.AllShowdownHands, r.payload)
	}

	return info
}

func playerByID(g *game.Engine, id string) *game.Player {
	for _, p := range g.Players() {
		if p.ID == id {
			return p
		}
	}
	return nil
}
