package rating

import (
	"math"

	"pvp-leaderboard/internal/constants"
)

// Delta returns the points self gains against opponent for the given result
// (1 win, 0 loss), using the standard logistic expectation with a fixed K.
func Delta(self, opponent, result float64) float64 {
	expected := 1 / (1 + math.Pow(10, (opponent-self)/400))
	return constants.EloK * (result - expected)
}

// WinnerGain is the winner's aggregate gain against every loser. Each
// pairwise delta is computed from the winner's pre-match rating; deltas are
// simultaneous, never re-based on intermediate results. Beating multiple
// opponents rewards additively.
func WinnerGain(winnerElo float64, loserElos []float64) float64 {
	var gain float64
	for _, loserElo := range loserElos {
		gain += Delta(winnerElo, loserElo, 1)
	}
	return gain
}

// LoserElo returns the loser's post-match rating. The loss equals the
// winner's pairwise gain against this loser, clamped at the floor.
func LoserElo(winnerElo, loserElo float64) float64 {
	return math.Max(constants.EloFloor, loserElo-Delta(winnerElo, loserElo, 1))
}
