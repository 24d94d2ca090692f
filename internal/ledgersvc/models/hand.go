package models

// Hand labels recognised by the achievement rules and the card classifier.
// Labels are an open set: any other string is stored as given.
const (
	HandRoyalFlush    = "Royal Flush"
	HandStraightFlush = "Straight Flush"
	HandFourOfAKind   = "Four of a Kind"
	HandFullHouse     = "Full House"
	HandFlush         = "Flush"
	HandStraight      = "Straight"
	HandThreeOfAKind  = "Three of a Kind"
	HandTwoPair       = "Two Pair"
	HandOnePair       = "One Pair"
	HandHighCard      = "High Card"
	HandFoldWin       = "Fold Win"
)
