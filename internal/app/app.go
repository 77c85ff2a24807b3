package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/squadscore/squadscore/internal/config"
	"github.com/squadscore/squadscore/internal/domain/chat"
	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/user"
	"github.com/squadscore/squadscore/internal/infrastructure/account/supabase"
	cachedrepo "github.com/squadscore/squadscore/internal/infrastructure/repository/cache"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/postgres"
	"github.com/squadscore/squadscore/internal/interfaces/httpapi"
	basecache "github.com/squadscore/squadscore/internal/platform/cache"
	idgen "github.com/squadscore/squadscore/internal/platform/id"
	"github.com/squadscore/squadscore/internal/platform/logging"
	"github.com/squadscore/squadscore/internal/platform/realtime"
	"github.com/squadscore/squadscore/internal/platform/resilience"
	"github.com/squadscore/squadscore/internal/usecase"
)

type repositories struct {
	squads       squad.Repository
	leaderboards leaderboard.Repository
	matches      match.Repository
	chats        chat.Repository
	users        user.Repository
}

// NewHTTPServer wires repositories, services, and the HTTP router into
// a ready-to-run server. The returned cleanup func releases the
// database handle and is safe to call once the server has stopped.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repos, db, err := openRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() error {
		if db != nil {
			return db.Close()
		}
		return nil
	}

	broker := realtime.NewBroker(cfg.RealtimeBufferSize)
	generator := idgen.NewRandomGenerator()

	squadSvc := usecase.NewSquadService(
		repos.squads,
		repos.leaderboards,
		repos.matches,
		repos.chats,
		repos.users,
		generator,
		logging.Default(),
	)
	leaderboardSvc := usecase.NewLeaderboardService(
		repos.leaderboards,
		repos.squads,
		repos.matches,
		repos.users,
		generator,
	)
	matchSvc := usecase.NewMatchService(repos.matches, repos.leaderboards, generator, broker)
	chatSvc := usecase.NewChatService(repos.chats, repos.squads, repos.users, generator, broker)

	var verifier httpapi.TokenVerifier
	if strings.TrimSpace(cfg.SupabaseURL) != "" {
		verifier = supabase.NewClient(
			&http.Client{Timeout: cfg.AuthTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			resilience.CircuitBreakerConfig{
				Enabled:          cfg.AuthCircuitEnabled,
				FailureThreshold: cfg.AuthCircuitFailureCount,
				OpenTimeout:      cfg.AuthCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AuthCircuitHalfOpenMaxReq,
			},
			logger,
		)
	}
	if verifier == nil && !cfg.AuthDevAllowHeader {
		cleanup()
		return nil, nil, fmt.Errorf("no token verifier configured: set SUPABASE_URL or enable AUTH_DEV_ALLOW_HEADER")
	}

	handler := httpapi.NewHandler(squadSvc, leaderboardSvc, matchSvc, chatSvc, broker, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.AuthDevAllowHeader, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openRepositories(cfg config.Config, logger *slog.Logger) (repositories, *sqlx.DB, error) {
	if useMemoryBackend(cfg.DBURL) {
		logger.Info("using in-memory repositories", "reason", "DB_URL=memory")
		squads := memory.NewSquadRepository()
		leaderboards := memory.NewLeaderboardRepository()
		matches := memory.NewMatchRepository()
		chats := memory.NewChatRepository()
		memory.Cascade(squads, leaderboards, matches, chats)
		return repositories{
			squads:       squads,
			leaderboards: leaderboards,
			matches:      matches,
			chats:        chats,
			users:        memory.NewUserRepository(memory.SeedUsers()),
		}, nil, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	repos := repositories{
		squads:       postgres.NewSquadRepository(db),
		leaderboards: postgres.NewLeaderboardRepository(db),
		matches:      postgres.NewMatchRepository(db),
		chats:        postgres.NewChatRepository(db),
		users:        postgres.NewUserRepository(db),
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.squads = cachedrepo.NewSquadRepository(repos.squads, store)
		repos.leaderboards = cachedrepo.NewLeaderboardRepository(repos.leaderboards, store)
		repos.users = cachedrepo.NewUserRepository(repos.users, store)
	}

	return repos, db, nil
}

func useMemoryBackend(dbURL string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(dbURL))
	return trimmed == "" || trimmed == "memory"
}
