package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvp-leaderboard/internal/constants"
)

func TestDeltaEvenMatch(t *testing.T) {
	// equal ratings: expectation is exactly one half
	assert.InDelta(t, constants.EloK*0.5, Delta(1200, 1200, 1), 1e-9)
	assert.InDelta(t, -constants.EloK*0.5, Delta(1200, 1200, 0), 1e-9)
}

func TestDeltaWinIsPositiveAgainstEqualOrStronger(t *testing.T) {
	cases := []struct {
		self, opponent float64
	}{
		{1200, 1200},
		{1200, 1300},
		{800, 2400},
		{1000, 1001},
	}
	for _, tc := range cases {
		assert.Greater(t, Delta(tc.self, tc.opponent, 1), 0.0,
			"win against equal or stronger opponent must gain points (self=%v opp=%v)", tc.self, tc.opponent)
	}
}

func TestDeltaGainShrinksAsSelfRatingRises(t *testing.T) {
	opponent := 1400.0
	prev := Delta(1000, opponent, 1)
	for self := 1100.0; self <= 2000; self += 100 {
		cur := Delta(self, opponent, 1)
		assert.Less(t, cur, prev, "gain must decrease as self rating rises (self=%v)", self)
		prev = cur
	}
}

func TestWinnerGainSumsPairwiseFromFixedRating(t *testing.T) {
	winner := 1200.0
	losers := []float64{1200, 1300}

	want := Delta(winner, 1200, 1) + Delta(winner, 1300, 1)
	require.InDelta(t, want, WinnerGain(winner, losers), 1e-9)

	// single loser degenerates to the plain pairwise delta
	assert.InDelta(t, Delta(winner, 1300, 1), WinnerGain(winner, []float64{1300}), 1e-9)

	// no losers, no gain
	assert.Zero(t, WinnerGain(winner, nil))
}

func TestLoserEloTakesPairwiseLoss(t *testing.T) {
	got := LoserElo(1200, 1200)
	assert.InDelta(t, 1200-constants.EloK*0.5, got, 1e-9)
}

func TestLoserEloClampedAtFloor(t *testing.T) {
	// an even match at 810 would drop to 794 without the floor
	assert.InDelta(t, constants.EloFloor, LoserElo(810, 810), 1e-9)

	// well above the floor the clamp must not engage
	assert.Greater(t, LoserElo(1200, 1300), constants.EloFloor)
}
