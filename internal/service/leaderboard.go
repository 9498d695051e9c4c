package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pvp-leaderboard/internal/config"
	"pvp-leaderboard/internal/constants"
	"pvp-leaderboard/internal/domain"
	"pvp-leaderboard/internal/repository"
	"pvp-leaderboard/internal/seed"
	"pvp-leaderboard/internal/season"
	"pvp-leaderboard/internal/store"
)

// Persister is the durable-storage surface the service writes through.
// Satisfied by *repository.BlobStore.
type Persister interface {
	Save(ctx context.Context, key string, body []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// LeaderboardService routes commands into the state store and mirrors every
// change to durable storage. Persistence is fire-and-forget: a write failure
// is logged, never surfaced back into state.
type LeaderboardService struct {
	store  *store.Store
	blobs  Persister
	cfg    *config.Config
	logger zerolog.Logger

	// persistMu serializes blob writes; persistSeq stamps each snapshot and
	// savedSeq records the newest stamp written per key, so a write carrying
	// an older snapshot is skipped instead of clobbering a newer one.
	persistMu  sync.Mutex
	persistSeq uint64
	savedSeq   map[string]uint64
}

func NewLeaderboardService(st *store.Store, blobs Persister, cfg *config.Config, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		store:    st,
		blobs:    blobs,
		cfg:      cfg,
		logger:   logger,
		savedSeq: make(map[string]uint64),
	}
}

// Load hydrates the store at startup. Each collection independently prefers
// its persisted blob and falls back to the bundled snapshot (players,
// championships) or empty (matches) when the blob is absent or malformed.
// State is never partially overwritten: fallbacks resolve before Restore.
func (s *LeaderboardService) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer cancel()

	var playersRaw, matchesRaw, champsRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		playersRaw, err = s.loadBlob(gctx, repository.KeyPlayers)
		return err
	})
	g.Go(func() error {
		var err error
		matchesRaw, err = s.loadBlob(gctx, repository.KeyMatches)
		return err
	})
	g.Go(func() error {
		var err error
		champsRaw, err = s.loadBlob(gctx, repository.KeyChampionships)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to read persisted state: %w", err)
	}

	snap, err := s.fallbackSnapshot()
	if err != nil {
		return err
	}

	players := snap.Players
	if playersRaw != nil {
		var persisted []domain.Player
		if err := json.Unmarshal(playersRaw, &persisted); err != nil {
			s.logger.Warn().Err(err).Msg("persisted players blob malformed, using snapshot")
		} else {
			players = persisted
		}
	}

	var matches []domain.Match
	if matchesRaw != nil {
		if err := json.Unmarshal(matchesRaw, &matches); err != nil {
			s.logger.Warn().Err(err).Msg("persisted matches blob malformed, starting empty")
			matches = nil
		}
	}

	champs := snap.Champs
	if champsRaw != nil {
		var persisted []domain.Championship
		if err := json.Unmarshal(champsRaw, &persisted); err != nil {
			s.logger.Warn().Err(err).Msg("persisted championships blob malformed, using snapshot")
		} else {
			champs = persisted
		}
	}

	s.store.Restore(players, matches, champs)
	s.logger.Info().
		Int("players", len(players)).
		Int("matches", len(matches)).
		Int("championships", len(champs)).
		Msg("state loaded")
	return nil
}

func (s *LeaderboardService) loadBlob(ctx context.Context, key string) ([]byte, error) {
	body, err := s.blobs.Load(ctx, key)
	if errors.Is(err, repository.ErrNoBlob) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *LeaderboardService) fallbackSnapshot() (*seed.Snapshot, error) {
	if s.cfg.SeedPath != "" {
		data, err := os.ReadFile(s.cfg.SeedPath)
		if err == nil {
			if snap, perr := seed.Parse(data); perr == nil {
				return snap, nil
			} else {
				s.logger.Warn().Err(perr).Str("path", s.cfg.SeedPath).Msg("seed override invalid, using embedded snapshot")
			}
		} else {
			s.logger.Warn().Err(err).Str("path", s.cfg.SeedPath).Msg("seed override unreadable, using embedded snapshot")
		}
	}
	snap, err := seed.Embedded()
	if err != nil {
		return nil, fmt.Errorf("embedded snapshot invalid: %w", err)
	}
	return snap, nil
}

// CurrentSeason resolves the season for a supplied instant.
func (s *LeaderboardService) CurrentSeason(now time.Time) season.Season {
	return season.Current(now)
}

func (s *LeaderboardService) Players() []domain.Player {
	return s.store.Players()
}

func (s *LeaderboardService) Player(id string) (domain.Player, error) {
	return s.store.Player(id)
}

func (s *LeaderboardService) Matches() []domain.Match {
	return s.store.Matches()
}

func (s *LeaderboardService) Championships() []domain.Championship {
	return s.store.Championships()
}

func (s *LeaderboardService) Leaderboard(seasonKey string, category domain.Category) ([]store.LeaderboardEntry, error) {
	if _, err := season.ParseKey(seasonKey); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return s.store.Leaderboard(seasonKey, category), nil
}

func (s *LeaderboardService) AddPlayer(name string) (domain.Player, error) {
	player, err := s.store.AddPlayer(name)
	if err != nil {
		return domain.Player{}, err
	}
	s.persistAsync(repository.KeyPlayers)
	return player, nil
}

func (s *LeaderboardService) UpdatePlayer(id string, patch store.PlayerPatch) (domain.Player, error) {
	player, err := s.store.UpdatePlayer(id, patch)
	if err != nil {
		return domain.Player{}, err
	}
	s.persistAsync(repository.KeyPlayers)
	return player, nil
}

func (s *LeaderboardService) OverrideStats(id, seasonKey string, category domain.Category, override store.StatsOverride) (domain.Player, error) {
	player, err := s.store.OverrideStats(id, seasonKey, category, override)
	if err != nil {
		return domain.Player{}, err
	}
	s.persistAsync(repository.KeyPlayers)
	return player, nil
}

func (s *LeaderboardService) DeletePlayer(id string) error {
	if err := s.store.DeletePlayer(id); err != nil {
		return err
	}
	s.persistAsync(repository.KeyPlayers)
	return nil
}

func (s *LeaderboardService) RecordMatch(winnerID string, participantIDs []string, battleType domain.BattleType, category domain.Category, location string) (domain.Match, error) {
	match, err := s.store.RecordMatch(winnerID, participantIDs, battleType, category, location)
	if err != nil {
		return domain.Match{}, err
	}
	s.persistAsync(repository.KeyPlayers, repository.KeyMatches)
	return match, nil
}

func (s *LeaderboardService) AddChampionship(seasonKey, name, winnerID, secondID, thirdID string) (domain.Championship, error) {
	champ, err := s.store.AddChampionship(seasonKey, name, winnerID, secondID, thirdID)
	if err != nil {
		return domain.Championship{}, err
	}
	s.persistAsync(repository.KeyPlayers, repository.KeyChampionships)
	return champ, nil
}

func (s *LeaderboardService) DeleteChampionship(id string) error {
	if err := s.store.DeleteChampionship(id); err != nil {
		return err
	}
	s.persistAsync(repository.KeyPlayers, repository.KeyChampionships)
	return nil
}

// Export serializes {players, champs}; match history is intentionally
// excluded from backups.
func (s *LeaderboardService) Export() ([]byte, error) {
	players, _, champs := s.store.Snapshot()
	data, err := json.MarshalIndent(seed.Snapshot{Players: players, Champs: champs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}
	return data, nil
}

// Import validates the uploaded document and, only on success, replaces
// players and championships and clears match history. A rejected import
// leaves both state and storage untouched.
func (s *LeaderboardService) Import(data []byte) error {
	snap, err := seed.Parse(data)
	if err != nil {
		return err
	}
	s.store.FullReset(snap.Players, snap.Champs)
	s.persistAsync(repository.KeyPlayers, repository.KeyMatches, repository.KeyChampionships)
	return nil
}

// persistAsync mirrors the named collections to durable storage without
// blocking the caller. Failures are logged and dropped per the best-effort
// persistence contract. The snapshot and its sequence stamp are taken
// synchronously, so stamps follow mutation order even though the writes
// themselves race.
func (s *LeaderboardService) persistAsync(keys ...string) {
	players, matches, champs := s.store.Snapshot()

	s.persistMu.Lock()
	s.persistSeq++
	seq := s.persistSeq
	s.persistMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.PersistTimeout)
		defer cancel()

		for _, key := range keys {
			var payload any
			switch key {
			case repository.KeyPlayers:
				payload = players
			case repository.KeyMatches:
				payload = matches
			case repository.KeyChampionships:
				payload = champs
			default:
				continue
			}

			body, err := json.Marshal(payload)
			if err != nil {
				s.logger.Error().Err(err).Str("key", key).Msg("failed to serialize collection")
				continue
			}
			s.saveIfNewest(ctx, key, seq, body)
		}
	}()
}

// saveIfNewest writes the blob unless a snapshot with a higher stamp already
// reached storage for this key. Holding the mutex across the write keeps the
// stamp check and the save atomic, so a slow write that lands late can never
// regress the blob to a stale snapshot.
func (s *LeaderboardService) saveIfNewest(ctx context.Context, key string, seq uint64, body []byte) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if s.savedSeq[key] > seq {
		s.logger.Debug().Str("key", key).Msg("newer snapshot already persisted, skipping write")
		return
	}
	if err := s.blobs.Save(ctx, key, body); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist collection")
		return
	}
	s.savedSeq[key] = seq
}
