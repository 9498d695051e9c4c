package store

import (
	"fmt"

	"pvp-leaderboard/internal/constants"
	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/rating"
	"pvp-leaderboard/internal/season"
)

func defaultCategoryStats() domain.CategoryStats {
	return domain.CategoryStats{
		Elo:    constants.DefaultElo,
		Wins:   0,
		Losses: 0,
		Tier:   domain.TierD,
	}
}

func defaultSeasonStats() domain.SeasonStats {
	stats := make(domain.SeasonStats, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		stats[cat] = defaultCategoryStats()
	}
	return stats
}

// AddPlayer registers a new player with default stats for every tracked
// category in the current season.
func (s *Store) AddPlayer(name string) (domain.Player, error) {
	if name == "" {
		return domain.Player{}, fmt.Errorf("%w: name required", ErrInvalidPlayer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player := domain.Player{
		ID:            newID(),
		Name:          name,
		DisplayName:   name,
		SkinName:      name,
		Era:           domain.EraNone,
		LastActive:    s.now().UnixMilli(),
		Championships: []domain.ChampBadge{},
		Stats: map[string]domain.SeasonStats{
			s.currentSeasonKey(): defaultSeasonStats(),
		},
	}

	players := clonePlayers(s.players)
	s.players = append(players, player)

	s.logger.Info().Str("player_id", player.ID).Str("name", name).Msg("player added")
	return player.Clone(), nil
}

// PlayerPatch carries optional identity and metadata edits. Nil fields are
// left untouched, so invalid partial states are unrepresentable.
type PlayerPatch struct {
	Name        *string
	DisplayName *string
	SkinName    *string
	Era         *domain.Era
	Location    *string
	PrimeTime   *string
	CustomRank  *string
}

func (s *Store) UpdatePlayer(id string, patch PlayerPatch) (domain.Player, error) {
	if patch.Era != nil && !patch.Era.Valid() {
		return domain.Player{}, fmt.Errorf("%w: unknown era %q", ErrInvalidPlayer, *patch.Era)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	players := clonePlayers(s.players)
	for i := range players {
		if players[i].ID != id {
			continue
		}
		applyPatch(&players[i], patch)
		s.players = players
		s.logger.Info().Str("player_id", id).Msg("player updated")
		return players[i].Clone(), nil
	}
	return domain.Player{}, ErrPlayerNotFound
}

func applyPatch(p *domain.Player, patch PlayerPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.SkinName != nil {
		p.SkinName = *patch.SkinName
	}
	if patch.Era != nil {
		p.Era = *patch.Era
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.PrimeTime != nil {
		p.PrimeTime = *patch.PrimeTime
	}
	if patch.CustomRank != nil {
		p.CustomRank = *patch.CustomRank
	}
}

// StatsOverride is the admin escape hatch for one category in one season.
// Tier may be set independently of elo; wins and losses are preserved.
// A ManualRank of 0 clears the placement override.
type StatsOverride struct {
	Elo        *float64
	Tier       *domain.Tier
	ManualRank *int
}

func (s *Store) OverrideStats(id, seasonKey string, category domain.Category, override StatsOverride) (domain.Player, error) {
	if _, err := season.ParseKey(seasonKey); err != nil {
		return domain.Player{}, fmt.Errorf("%w: %v", ErrInvalidPlayer, err)
	}
	if !category.Valid() {
		return domain.Player{}, fmt.Errorf("%w: unknown category %q", ErrInvalidPlayer, category)
	}
	if override.Tier != nil && !override.Tier.Valid() {
		return domain.Player{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidPlayer, *override.Tier)
	}
	if override.ManualRank != nil && *override.ManualRank < 0 {
		return domain.Player{}, fmt.Errorf("%w: manual rank must be positive", ErrInvalidPlayer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	players := clonePlayers(s.players)
	for i := range players {
		if players[i].ID != id {
			continue
		}

		if players[i].Stats == nil {
			players[i].Stats = make(map[string]domain.SeasonStats)
		}
		seasonStats, ok := players[i].Stats[seasonKey]
		if !ok {
			seasonStats = make(domain.SeasonStats)
			players[i].Stats[seasonKey] = seasonStats
		}
		stats, ok := seasonStats[category]
		if !ok {
			stats = defaultCategoryStats()
		}

		if override.Elo != nil {
			stats.Elo = *override.Elo
			// keep the tier consistent unless this override also pins it
			if override.Tier == nil {
				stats.Tier = rating.Classify(stats.Elo)
			}
		}
		if override.Tier != nil {
			stats.Tier = *override.Tier
		}
		if override.ManualRank != nil {
			stats.ManualRank = *override.ManualRank
		}

		seasonStats[category] = stats
		s.players = players
		s.logger.Info().
			Str("player_id", id).
			Str("season", seasonKey).
			Str("category", string(category)).
			Msg("stats override applied")
		return players[i].Clone(), nil
	}
	return domain.Player{}, ErrPlayerNotFound
}

// DeletePlayer removes the player from the roster. Historical matches and
// championships keep their references; unresolved ids render as "Unknown"
// downstream.
func (s *Store) DeletePlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]domain.Player, 0, len(s.players))
	found := false
	for _, p := range s.players {
		if p.ID == id {
			found = true
			continue
		}
		players = append(players, p.Clone())
	}
	if !found {
		return ErrPlayerNotFound
	}
	s.players = players
	s.logger.Info().Str("player_id", id).Msg("player deleted")
	return nil
}
