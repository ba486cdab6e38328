package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"live-quiz-service/internal/config"
	"live-quiz-service/internal/game"
	"live-quiz-service/internal/infra/memory"
	"live-quiz-service/internal/infra/postgres"
	redisstore "live-quiz-service/internal/infra/redis"
	transport "live-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// subscribingBroadcaster is what the engine publishes to and websockets read from.
type subscribingBroadcaster interface {
	game.Broadcaster
	transport.Subscriber
}

type resultArchive interface {
	game.ResultArchive
	transport.ResultReader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	retention := config.TTLDuration(cfg.Game.Retention, 30*time.Minute)
	roomTTL := config.TTLDuration(cfg.Game.IdleTTL, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))

	var (
		pool *pgxpool.Pool
		db   *bun.DB
	)
	if cfg.Postgres.URL != "" {
		db = postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		if err := Migrate(ctx, db); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	var loader memory.QuestionSetLoader = memory.NewStaticQuestionSetLoader(memory.SampleQuestionSets())
	if pool != nil {
		loader = postgres.NewQuestionSetLoader(pool)
	}

	setTTL := config.TTLDuration(cfg.QuestionSets.TTL, 10*time.Minute)
	var (
		questionSets game.QuestionSetRepository
		store        game.RoomStore
		bus          subscribingBroadcaster
		memStore     *memory.RoomStore
	)
	if redisClient != nil {
		questionSets = redisstore.NewQuestionSetRepository(redisClient, loader, setTTL)
		store = redisstore.NewRoomStore(redisClient, roomTTL, retention)
		bus = redisstore.NewBroadcaster(redisClient)
	} else {
		questionSets = memory.NewQuestionSetRepository(loader, setTTL)
		memStore = memory.NewRoomStore(roomTTL, retention)
		store = memStore
		bus = memory.NewHub()
	}

	var archive resultArchive = memory.NewResultArchive()
	if db != nil {
		archive = postgres.NewResultArchive(db)
	}

	opts := game.Options{
		DefaultTimeLimit: config.TTLDuration(cfg.Game.DefaultTimeLimit, 0),
		BetweenPause:     config.TTLDuration(cfg.Game.BetweenPause, 0),
		ComboBonus:       cfg.Game.ComboBonus,
		ComboTeamAward:   cfg.Game.ComboTeamAward,
		HealthDamage:     cfg.Game.HealthDamage,
		ConflictRetries:  cfg.Game.ConflictRetries,
		Archive:          archive,
		QuestionSets:     questionSets,
	}
	if cfg.Game.TimersEnabled() {
		opts.Scheduler = game.NewTimerScheduler()
	}
	engine := game.NewEngine(store, bus, opts)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(engine, bus, archive, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if memStore != nil {
		g.Go(func() error {
			return memStore.RunJanitor(gctx, config.TTLDuration(cfg.Game.JanitorInterval, time.Minute))
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
