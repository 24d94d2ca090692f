// Package hands derives a winning-hand label from the cards that won it.
package hands

import (
	"fmt"
	"strings"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/paulhankin/poker"
)

// CardError reports the card that could not be parsed.
type CardError struct {
	Index int
	Card  string
	Cause string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card %d (%q): %s", e.Index, e.Card, e.Cause)
}

var ranks = map[string]poker.Rank{
	"A": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
	"8": 8, "9": 9, "T": 10, "10": 10, "J": 11, "Q": 12, "K": 13,
}

var suits = map[byte]poker.Suit{
	'C': poker.Club,
	'D': poker.Diamond,
	'H': poker.Heart,
	'S': poker.Spade,
}

// ParseCard reads a card like "As", "Td" or "10h".
func ParseCard(s string) (poker.Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("too short")
	}
	suit, ok := suits[s[len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("unknown suit %q", s[len(s)-1:])
	}
	rank, ok := ranks[s[:len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("unknown rank %q", s[:len(s)-1])
	}
	return poker.MakeCard(suit, rank)
}

// Classify returns the label of the best hand made from 5 or 7 cards.
func Classify(cards []string) (string, error) {
	if len(cards) != 5 && len(cards) != 7 {
		return "", fmt.Errorf("need 5 or 7 cards, got %d", len(cards))
	}

	parsed := make([]poker.Card, 0, len(cards))
	seen := make(map[poker.Card]bool, len(cards))
	for i, raw := range cards {
		c, err := ParseCard(raw)
		if err != nil {
			return "", &CardError{Index: i, Card: raw, Cause: err.Error()}
		}
		if seen[c] {
			return "", &CardError{Index: i, Card: raw, Cause: "duplicate card"}
		}
		seen[c] = true
		parsed = append(parsed, c)
	}

	desc, err := poker.Describe(parsed)
	if err != nil {
		return "", fmt.Errorf("describe hand: %w", err)
	}
	label := Label(desc)
	if label == models.HandStraightFlush && hasRoyal(cards) {
		label = models.HandRoyalFlush
	}
	return label, nil
}

// Label maps a poker.Describe result onto the ledger's hand labels.
// Straights and flushes are named ("9 straight flush", "AKQ84 flush");
// every other hand is rank groups joined by dashes ("KKK-33", "QQ-7-4-3").
func Label(desc string) string {
	switch {
	case strings.HasSuffix(desc, " straight flush"):
		return models.HandStraightFlush
	case strings.HasSuffix(desc, " flush"):
		return models.HandFlush
	case strings.HasSuffix(desc, " straight"):
		return models.HandStraight
	}

	var quads, trips, pairs int
	for _, group := range strings.Split(desc, "-") {
		switch len(group) {
		case 4:
			quads++
		case 3:
			trips++
		case 2:
			pairs++
		}
	}
	switch {
	case quads > 0:
		return models.HandFourOfAKind
	case trips > 0 && pairs > 0:
		return models.HandFullHouse
	case trips > 0:
		return models.HandThreeOfAKind
	case pairs > 1:
		return models.HandTwoPair
	case pairs == 1:
		return models.HandOnePair
	default:
		return models.HandHighCard
	}
}

// hasRoyal reports whether one suit holds all of T J Q K A.
func hasRoyal(cards []string) bool {
	held := map[byte]int{}
	for _, raw := range cards {
		s := strings.ToUpper(strings.TrimSpace(raw))
		switch s[:len(s)-1] {
		case "T", "10", "J", "Q", "K", "A":
			held[s[len(s)-1]]++
		}
	}
	for _, n := range held {
		if n == 5 {
			return true
		}
	}
	return false
}
