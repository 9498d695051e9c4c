package rating

import "pvp-leaderboard/internal/domain"

type tierBand struct {
	MinElo float64
	Tier   domain.Tier
}

// Evaluated top-down, first match wins; D is the catch-all floor.
var tierBands = []tierBand{
	{2000, domain.TierS},
	{1800, domain.TierA},
	{1600, domain.TierB},
	{1400, domain.TierC},
}

// Classify maps a rating to its tier. Total over all real inputs; an admin
// override may set a player's tier independently of this mapping.
func Classify(elo float64) domain.Tier {
	for _, band := range tierBands {
		if elo >= band.MinElo {
			return band.Tier
		}
	}
	return domain.TierD
}
