package store

import (
	"fmt"

	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/rating"
)

// RecordMatch resolves one contest under the current season. The winner's
// gain is the sum of pairwise deltas against every loser, all computed from
// the same pre-match rating snapshot; each loser takes an independent
// pairwise loss clamped at the floor. The store re-validates arguments even
// though the HTTP layer already does: a malformed match would silently
// corrupt aggregate stats.
func (s *Store) RecordMatch(winnerID string, participantIDs []string, battleType domain.BattleType, category domain.Category, location string) (domain.Match, error) {
	if len(participantIDs) < 2 {
		return domain.Match{}, fmt.Errorf("%w: need at least 2 participants", ErrInvalidMatch)
	}
	if !contains(participantIDs, winnerID) {
		return domain.Match{}, fmt.Errorf("%w: winner must be a participant", ErrInvalidMatch)
	}
	seen := make(map[string]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			return domain.Match{}, fmt.Errorf("%w: duplicate participant %s", ErrInvalidMatch, id)
		}
		seen[id] = struct{}{}
	}
	if !category.CombatCategory() {
		return domain.Match{}, fmt.Errorf("%w: matches cannot be recorded under %q", ErrInvalidMatch, category)
	}
	if !battleType.Valid() {
		return domain.Match{}, fmt.Errorf("%w: unknown battle type %q", ErrInvalidMatch, battleType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]int, len(s.players))
	for i, p := range s.players {
		byID[p.ID] = i
	}
	for _, id := range participantIDs {
		if _, ok := byID[id]; !ok {
			return domain.Match{}, fmt.Errorf("%w: participant %s not in roster", ErrInvalidMatch, id)
		}
	}

	seasonKey := s.currentSeasonKey()
	now := s.now().UnixMilli()

	// One consistent pre-match view of every participant's rating.
	preElo := make(map[string]float64, len(participantIDs))
	for _, id := range participantIDs {
		preElo[id] = s.categoryStats(byID[id], seasonKey, category).Elo
	}

	loserIDs := make([]string, 0, len(participantIDs)-1)
	loserElos := make([]float64, 0, len(participantIDs)-1)
	for _, id := range participantIDs {
		if id == winnerID {
			continue
		}
		loserIDs = append(loserIDs, id)
		loserElos = append(loserElos, preElo[id])
	}

	gain := rating.WinnerGain(preElo[winnerID], loserElos)

	players := clonePlayers(s.players)

	winner := &players[byID[winnerID]]
	wStats := ensureCategoryStats(winner, seasonKey, category)
	wStats.Elo = preElo[winnerID] + gain
	wStats.Wins++
	wStats.Tier = rating.Classify(wStats.Elo)
	winner.Stats[seasonKey][category] = wStats
	winner.LastActive = now

	for _, id := range loserIDs {
		loser := &players[byID[id]]
		lStats := ensureCategoryStats(loser, seasonKey, category)
		lStats.Elo = rating.LoserElo(preElo[winnerID], preElo[id])
		lStats.Losses++
		lStats.Tier = rating.Classify(lStats.Elo)
		loser.Stats[seasonKey][category] = lStats
		loser.LastActive = now
	}

	match := domain.Match{
		ID:             newID(),
		WinnerID:       winnerID,
		ParticipantIDs: append([]string(nil), participantIDs...),
		BattleType:     battleType,
		Category:       category,
		EloGain:        gain,
		Timestamp:      now,
		Location:       location,
		SeasonKey:      seasonKey,
	}

	s.players = players
	s.matches = append([]domain.Match{match}, cloneMatches(s.matches)...)

	s.logger.Info().
		Str("match_id", match.ID).
		Str("winner_id", winnerID).
		Int("participants", len(participantIDs)).
		Str("category", string(category)).
		Float64("elo_gain", gain).
		Msg("match recorded")
	return match.Clone(), nil
}

func (s *Store) categoryStats(playerIdx int, seasonKey string, category domain.Category) domain.CategoryStats {
	if seasonStats, ok := s.players[playerIdx].Stats[seasonKey]; ok {
		if stats, ok := seasonStats[category]; ok {
			return stats
		}
	}
	return defaultCategoryStats()
}

// ensureCategoryStats returns the player's block for the season/category,
// materializing defaults for players who have not played this season yet.
func ensureCategoryStats(p *domain.Player, seasonKey string, category domain.Category) domain.CategoryStats {
	if p.Stats == nil {
		p.Stats = make(map[string]domain.SeasonStats)
	}
	seasonStats, ok := p.Stats[seasonKey]
	if !ok {
		seasonStats = make(domain.SeasonStats)
		p.Stats[seasonKey] = seasonStats
	}
	stats, ok := seasonStats[category]
	if !ok {
		stats = defaultCategoryStats()
	}
	return stats
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
