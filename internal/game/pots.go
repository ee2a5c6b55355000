package game

import (
	"fmt"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/evaluator"
)

// Pot is one layer of the resolved pot structure: the main pot or a side
// pot, the players eligible to win it, and the winners chosen among them.
type Pot struct {
	Amount      int
	Kind        string // "main" or "side_N"
	EligibleIDs []string
	WinnerIDs   []string
}

// ResolvePots layers player investments into main and side pots and picks
// winners for each layer. Folded players' chips count toward pot amounts
// but folded players can never win. Investments are copied into a working
// map; player state is never mutated here.
func ResolvePots(eval *evaluator.Evaluator, players []*Player, board []deck.Card) []Pot {
	eligible := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.IsActive || p.AllIn {
			eligible = append(eligible, p)
		}
	}

	contributors := make([]*Player, 0, len(players))
	totalPot := 0
	for _, p := range players {
		if p.TotalInvested > 0 {
			contributors = append(contributors, p)
			totalPot += p.TotalInvested
		}
	}

	if len(eligible) <= 1 {
		if len(eligible) == 0 {
			return nil
		}
		return []Pot{{
			Amount:      totalPot,
			Kind:        "main",
			EligibleIDs: playerIDs(eligible),
			WinnerIDs:   []string{eligible[0].ID},
		}}
	}

	// Fast path: everyone still in invested the same amount, so a single
	// pot covers the whole hand.
	uniform := true
	for _, p := range eligible[1:] {
		if p.TotalInvested != eligible[0].TotalInvested {
			uniform = false
			break
		}
	}
	if uniform {
		return []Pot{{
			Amount:      totalPot,
			Kind:        "main",
			EligibleIDs: playerIDs(eligible),
			WinnerIDs:   bestHands(eval, eligible, board),
		}}
	}

	investments := make(map[string]int, len(contributors))
	for _, p := range contributors {
		investments[p.ID] = p.TotalInvested
	}

	var pots []Pot
	for len(investments) > 0 {
		minInvestment := 0
		for _, inv := range investments {
			if inv > 0 && (minInvestment == 0 || inv < minInvestment) {
				minInvestment = inv
			}
		}
		if minInvestment == 0 {
			break
		}

		amount := 0
		var layerEligible []*Player
		for _, p := range contributors {
			inv, ok := investments[p.ID]
			if !ok {
				continue
			}
			contribution := min(inv, minInvestment)
			amount += contribution
			investments[p.ID] = inv - contribution
			if contribution > 0 && (p.IsActive || p.AllIn) {
				layerEligible = append(layerEligible, p)
			}
		}

		if len(layerEligible) > 0 {
			kind := "main"
			if len(pots) > 0 {
				kind = fmt.Sprintf("side_%d", len(pots))
			}
			pots = append(pots, Pot{
				Amount:      amount,
				Kind:        kind,
				EligibleIDs: playerIDs(layerEligible),
				WinnerIDs:   bestHands(eval, layerEligible, board),
			})
		}

		for id, inv := range investments {
			if inv <= 0 {
				delete(investments, id)
			}
		}
	}

	return pots
}

// bestHands returns the ids of the players holding the minimum (best)
// score among candidates, in seat order.
func bestHands(eval *evaluator.Evaluator, candidates []*Player, board []deck.Card) []string {
	bestScore := -1
	var winners []string
	for _, p := range candidates {
		if len(p.HoleCards) == 0 {
			continue
		}
		score, _ := eval.Evaluate(p.HoleCards, board)
		switch {
		case bestScore == -1 || score < bestScore:
			bestScore = score
			winners = []string{p.ID}
		case score == bestScore:
			winners = append(winners, p.ID)
		}
	}
	return winners
}

func playerIDs(players []*Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
