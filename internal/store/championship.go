package store

import (
	"fmt"

	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/season"
)

// AddChampionship upserts a tournament result keyed by (name, seasonKey):
// an existing record for the pair is deleted first, badges unwound, then the
// new record is prepended and one badge per present medalist appended.
// Resubmission therefore acts as an edit. Second and third place may be
// empty; medalist ids not in the roster are skipped.
func (s *Store) AddChampionship(seasonKey, name, winnerID, secondID, thirdID string) (domain.Championship, error) {
	if name == "" {
		return domain.Championship{}, fmt.Errorf("%w: name required", ErrInvalidChampionship)
	}
	if winnerID == "" {
		return domain.Championship{}, fmt.Errorf("%w: winner required", ErrInvalidChampionship)
	}
	if _, err := season.ParseKey(seasonKey); err != nil {
		return domain.Championship{}, fmt.Errorf("%w: %v", ErrInvalidChampionship, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.champs {
		if c.Name == name && c.SeasonKey == seasonKey {
			s.deleteChampionshipLocked(c.ID)
			break
		}
	}

	champ := domain.Championship{
		ID:        newID(),
		SeasonKey: seasonKey,
		Name:      name,
		WinnerID:  winnerID,
		SecondID:  secondID,
		ThirdID:   thirdID,
		Timestamp: s.now().UnixMilli(),
	}
	s.champs = append([]domain.Championship{champ}, cloneChamps(s.champs)...)

	players := clonePlayers(s.players)
	for i := range players {
		// independent checks: the same player filling two slots earns both
		if players[i].ID == winnerID {
			players[i].Championships = append(players[i].Championships, domain.ChampBadge{SeasonKey: seasonKey, Place: 1})
		}
		if secondID != "" && players[i].ID == secondID {
			players[i].Championships = append(players[i].Championships, domain.ChampBadge{SeasonKey: seasonKey, Place: 2})
		}
		if thirdID != "" && players[i].ID == thirdID {
			players[i].Championships = append(players[i].Championships, domain.ChampBadge{SeasonKey: seasonKey, Place: 3})
		}
	}
	s.players = players

	s.logger.Info().
		Str("championship_id", champ.ID).
		Str("name", name).
		Str("season", seasonKey).
		Msg("championship awarded")
	return champ, nil
}

// DeleteChampionship removes the record and, for each medalist, exactly one
// badge matching that medalist's place for the season. Players holding more
// medals for the same season from other tournaments keep them.
func (s *Store) DeleteChampionship(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.deleteChampionshipLocked(id) {
		return ErrChampionshipNotFound
	}
	s.logger.Info().Str("championship_id", id).Msg("championship deleted")
	return nil
}

func (s *Store) deleteChampionshipLocked(id string) bool {
	var target domain.Championship
	found := false
	champs := make([]domain.Championship, 0, len(s.champs))
	for _, c := range s.champs {
		if c.ID == id {
			target = c
			found = true
			continue
		}
		champs = append(champs, c)
	}
	if !found {
		return false
	}
	s.champs = champs

	players := clonePlayers(s.players)
	for i := range players {
		place := 0
		switch players[i].ID {
		case target.WinnerID:
			place = 1
		case target.SecondID:
			place = 2
		case target.ThirdID:
			place = 3
		}
		if place == 0 {
			continue
		}
		players[i].Championships = removeFirstBadge(players[i].Championships, target.SeasonKey, place)
	}
	s.players = players
	return true
}

// removeFirstBadge drops only the first badge matching (seasonKey, place);
// duplicates from manual data entry lose a single instance.
func removeFirstBadge(badges []domain.ChampBadge, seasonKey string, place int) []domain.ChampBadge {
	for i, b := range badges {
		if b.SeasonKey == seasonKey && b.Place == place {
			return append(badges[:i:i], badges[i+1:]...)
		}
	}
	return badges
}
