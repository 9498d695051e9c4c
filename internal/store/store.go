// Package store owns the in-memory state graph: players, match history and
// championships. All mutations run under one mutex and replace the affected
// collections copy-on-write, so snapshots handed to readers never alias live
// state and partial failure never leaves inconsistent cross-references
// visible.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/season"
)

var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrChampionshipNotFound = errors.New("championship not found")
	ErrInvalidMatch         = errors.New("invalid match")
	ErrInvalidChampionship  = errors.New("invalid championship")
	ErrInvalidPlayer        = errors.New("invalid player")
)

type Store struct {
	mu      sync.Mutex
	players []domain.Player
	matches []domain.Match
	champs  []domain.Championship

	// now is injected so season resolution and timestamps are deterministic
	// under test.
	now    func() time.Time
	logger zerolog.Logger
}

func New(logger zerolog.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now, logger: logger}
}

func newID() string {
	id, err := gonanoid.New()
	if err != nil {
		// nanoid only fails when the OS entropy source does; nothing
		// sensible to do but give up.
		panic(err)
	}
	return id
}

func (s *Store) currentSeasonKey() string {
	return season.Current(s.now()).Key()
}

// Restore hydrates the store from persisted collections at startup.
func (s *Store) Restore(players []domain.Player, matches []domain.Match, champs []domain.Championship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = clonePlayers(players)
	s.matches = cloneMatches(matches)
	s.champs = cloneChamps(champs)
}

// FullReset wholesale-replaces players and championships and clears match
// history. Used by import.
func (s *Store) FullReset(players []domain.Player, champs []domain.Championship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = clonePlayers(players)
	s.champs = cloneChamps(champs)
	s.matches = nil
	s.logger.Info().
		Int("players", len(players)).
		Int("championships", len(champs)).
		Msg("state fully reset")
}

func (s *Store) Players() []domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlayers(s.players)
}

func (s *Store) Player(id string) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return domain.Player{}, ErrPlayerNotFound
}

func (s *Store) Matches() []domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMatches(s.matches)
}

func (s *Store) Championships() []domain.Championship {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChamps(s.champs)
}

// Snapshot returns deep copies of all three collections from one consistent
// view of the state.
func (s *Store) Snapshot() ([]domain.Player, []domain.Match, []domain.Championship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlayers(s.players), cloneMatches(s.matches), cloneChamps(s.champs)
}

type LeaderboardEntry struct {
	Player domain.Player        `json:"player"`
	Stats  domain.CategoryStats `json:"stats"`
}

// Leaderboard lists players holding stats for the season, ordered by manual
// rank override first (ascending, ranked players before unranked), then elo
// descending.
func (s *Store) Leaderboard(seasonKey string, category domain.Category) []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []LeaderboardEntry
	for _, p := range s.players {
		seasonStats, ok := p.Stats[seasonKey]
		if !ok {
			continue
		}
		stats, ok := seasonStats[category]
		if !ok {
			stats = defaultCategoryStats()
		}
		entries = append(entries, LeaderboardEntry{Player: p.Clone(), Stats: stats})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Stats.ManualRank, entries[j].Stats.ManualRank
		if ri > 0 && rj > 0 {
			return ri < rj
		}
		if ri > 0 || rj > 0 {
			return ri > 0
		}
		return entries[i].Stats.Elo > entries[j].Stats.Elo
	})
	return entries
}

func clonePlayers(players []domain.Player) []domain.Player {
	out := make([]domain.Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}

func cloneMatches(matches []domain.Match) []domain.Match {
	out := make([]domain.Match, len(matches))
	for i, m := range matches {
		out[i] = m.Clone()
	}
	return out
}

func cloneChamps(champs []domain.Championship) []domain.Championship {
	out := make([]domain.Championship, len(champs))
	copy(out, champs)
	return out
}
