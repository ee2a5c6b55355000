package game

import (
	"fmt"

	"github.com/lox/holdem-live/internal/deck"
)

// AIThinking digests one AI seat's reasoning for the analysis view
type AIThinking struct {
	Name         string
	Personality  Personality
	Action       Action
	Reasoning    string
	HandStrength float64
	Confidence   float64
}

// HandAnalysis is a rule-based review of the last completed hand from the
// human player's perspective.
type HandAnalysis struct {
	HandNumber     int
	YourAction     string
	YourCards      []deck.Card
	CommunityCards []deck.Card
	PotSize        int
	YouWon         bool
	Winners        []string
	HandStrength   float64
	Insights       []string
	Tips           []string
	AIThinking     []AIThinking
	EventCount     int
}

// AnalyzeLastHand reviews the last completed hand and produces insights
// and tips. Returns nil when no hand has completed yet.
func (g *Engine) AnalyzeLastHand() *HandAnalysis {
	hand := g.lastHandSummary
	if hand == nil {
		return nil
	}

	humanWon := false
	for _, id := range hand.WinnerIDs {
		if id == "human" {
			humanWon = true
			break
		}
	}

	var insights, tips []string

	if hand.HumanPotOdds > 0 {
		potOddsPct := hand.HumanPotOdds * 100
		strengthPct := hand.HumanHandStrength * 100

		switch {
		case hand.HumanAction == "fold" && hand.HumanHandStrength >= 0.5:
			insights = append(insights, fmt.Sprintf(
				"You folded a strong hand (%.0f%%). With pot odds of %.0f%%, calling might have been better.",
				strengthPct, potOddsPct))
			tips = append(tips, "With strong hands (>50%), you should call unless facing a very large bet.")
		case hand.HumanAction == "fold" && hand.HumanHandStrength >= 0.4 && hand.HumanPotOdds < 0.33:
			insights = append(insights, fmt.Sprintf(
				"Good fold! You had a decent hand (%.0f%%) but pot odds (%.0f%%) weren't favorable.",
				strengthPct, potOddsPct))
		case hand.HumanAction == "call" && hand.HumanHandStrength < 0.25 && hand.HumanPotOdds > 0.5:
			insights = append(insights, fmt.Sprintf(
				"You called with a weak hand (%.0f%%) and poor pot odds (%.0f%%).", strengthPct, potOddsPct))
			tips = append(tips, "Calling with weak hands and bad pot odds usually loses money. Consider folding.")
		case hand.HumanAction == "call" && hand.HumanHandStrength > 0.4:
			insights = append(insights, fmt.Sprintf("Reasonable call with %.0f%% hand strength.", strengthPct))
		}
	}

	if humanWon {
		insights = append(insights, fmt.Sprintf("You won %d!", hand.PotSize))
	} else if hand.HumanAction != "fold" {
		insights = append(insights, fmt.Sprintf("You lost to %s", joinNames(hand.WinnerNames)))
		if hand.HumanHandStrength >= 0.6 {
			insights = append(insights, "Tough beat - you had a strong hand but got outdrawn.")
		}
	}

	if hand.HumanAction == "raise" && !humanWon {
		tips = append(tips, "Raising is powerful but risky. Make sure you have a strong hand or a good bluffing opportunity.")
	}

	var thinking []AIThinking
	for playerID, decision := range hand.AIDecisions {
		p := g.playerByID(playerID)
		if p == nil {
			continue
		}
		thinking = append(thinking, AIThinking{
			Name:         p.Name,
			Personality:  p.Personality,
			Action:       decision.Action,
			Reasoning:    decision.Reasoning,
			HandStrength: decision.HandStrength,
			Confidence:   decision.Confidence,
		})
	}

	return &HandAnalysis{
		HandNumber:     hand.HandNumber,
		YourAction:     hand.HumanAction,
		YourCards:      hand.HumanCards,
		CommunityCards: hand.CommunityCards,
		PotSize:        hand.PotSize,
		YouWon:         humanWon,
		Winners:        hand.WinnerNames,
		HandStrength:   hand.HumanHandStrength,
		Insights:       insights,
		Tips:           tips,
		AIThinking:     thinking,
		EventCount:     len(hand.Events),
	}
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "nobody"
	case 1:
		return names[0]
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
