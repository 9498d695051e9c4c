package fx

import (
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"pvp-leaderboard/internal/config"
	"pvp-leaderboard/internal/database"
	"pvp-leaderboard/internal/logger"
	"pvp-leaderboard/internal/repository"
	"pvp-leaderboard/internal/server"
	"pvp-leaderboard/internal/service"
	"pvp-leaderboard/internal/store"
)

func ProvideStore(log zerolog.Logger) *store.Store {
	return store.New(log, time.Now)
}

func ProvidePersister(blobs *repository.BlobStore) service.Persister {
	return blobs
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// persistence
	fx.Provide(repository.NewBlobStore),
	fx.Provide(ProvidePersister),
	// state
	fx.Provide(ProvideStore),
	// svc
	fx.Provide(service.NewLeaderboardService),
	// server
	fx.Provide(server.NewServer),
)
