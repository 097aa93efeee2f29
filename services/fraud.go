package services

import (
	"github.com/shopspring/decimal"
)

// FraudThreshold is the risk score above which checkout is rejected.
const FraudThreshold = 70

// highAmountLimit is the transaction size that starts looking unusual.
var highAmountLimit = decimal.NewFromInt(1000)

// ScoreInput carries the request signals the fraud heuristic looks at.
// Everything is resolved by the caller, so scoring stays a pure function.
type ScoreInput struct {
	IPBlocked bool
	UserAgent string
	Amount    decimal.Decimal
	Hour      int
}

// ScoreTransaction computes a heuristic risk score with human-readable
// indicators. It is a guess, not a verdict: false positives and negatives
// are accepted.
func ScoreTransaction(in ScoreInput) (int, []string) {
	score := 0
	var indicators []string

	if in.IPBlocked {
		score += 50
		indicators = append(indicators, "IP address is blocked")
	}

	if len(in.UserAgent) < 20 {
		score += 20
		indicators = append(indicators, "Suspicious user agent")
	}

	if in.Amount.GreaterThan(highAmountLimit) {
		score += 30
		indicators = append(indicators, "High transaction amount")
	}

	if in.Hour >= 2 && in.Hour <= 5 {
		score += 15
		indicators = append(indicators, "Unusual transaction time")
	}

	return score, indicators
}
