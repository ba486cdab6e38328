package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"live-quiz-service/internal/cli"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/game"
	"live-quiz-service/internal/infra/postgres"
	infraredis "live-quiz-service/internal/infra/redis"
)

func TestGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	if err := cli.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewQuestionSetLoader(pool)
	if err := loader.SaveQuestionSet(ctx, sampleSet()); err != nil {
		t.Fatalf("save question set: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	bus := infraredis.NewBroadcaster(redisClient)
	archive := postgres.NewResultArchive(db)
	engine := game.NewEngine(infraredis.NewRoomStore(redisClient, 5*time.Minute, time.Minute), bus, game.Options{
		Archive:      archive,
		QuestionSets: infraredis.NewQuestionSetRepository(redisClient, loader, 5*time.Minute),
	})

	room, err := engine.CreateRoomFromSet(ctx, "integration", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	events, cancel, err := bus.Subscribe(ctx, domain.RoomChannel(room.Pin))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	for _, p := range []struct{ id, nick string }{{"u1", "Alice"}, {"u2", "Bob"}} {
		if _, err := engine.Join(ctx, room.Pin, p.id, p.nick, ""); err != nil {
			t.Fatalf("join %s: %v", p.id, err)
		}
	}
	if _, err := engine.Start(ctx, room.Pin); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := engine.SubmitAnswer(ctx, room.Pin, "u2", pick(1)); err != nil {
			t.Fatalf("submit u2: %v", err)
		}
		if _, err := engine.SubmitAnswer(ctx, room.Pin, "u1", pick(0)); err != nil {
			t.Fatalf("submit u1: %v", err)
		}
		if _, err := engine.Advance(ctx, room.Pin, i); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	result, err := archive.LatestResult(ctx, room.Pin)
	if err != nil {
		t.Fatalf("latest result: %v", err)
	}
	if result.Questions != 2 || len(result.Leaderboard) != 2 || result.Leaderboard[0].PlayerID != "u2" {
		t.Fatalf("expected bob leading the archived result, got %+v", result)
	}

	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed before game_ended")
			}
			if ev.Name == domain.EventGameEnded {
				return
			}
		case <-deadline:
			t.Fatalf("no game_ended event over redis")
		}
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleSet() domain.QuestionSet {
	q := func(id, text string) domain.Question {
		return domain.Question{
			ID:               id,
			Type:             domain.TypeMultiple,
			Text:             text,
			Options:          []string{"3", "4", "5"},
			CorrectOptions:   []int{1},
			TimeLimitSeconds: 20,
		}
	}
	return domain.QuestionSet{
		ID:        "integration",
		Title:     "Arithmetic",
		Questions: []domain.Question{q("q1", "What is 2 + 2?"), q("q2", "What is 8 / 2?")},
	}
}

func pick(idx int) domain.AnswerSubmission {
	return domain.AnswerSubmission{SelectedIndex: &idx}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
