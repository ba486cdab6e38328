package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"live-quiz-service/internal/domain"
)

type gameResultRow struct {
	bun.BaseModel `bun:"table:game_results,alias:gr"`

	ID          int64                     `bun:"id,pk,autoincrement"`
	Pin         string                    `bun:"pin,notnull"`
	EndedAt     time.Time                 `bun:"ended_at,notnull"`
	Questions   int                       `bun:"questions,notnull"`
	Leaderboard []domain.LeaderboardEntry `bun:"leaderboard,type:jsonb"`
	Badges      []domain.Badge            `bun:"badges,type:jsonb"`
	Teams       []domain.Team             `bun:"teams,type:jsonb"`
}

func (r gameResultRow) toDomain() domain.GameResult {
	return domain.GameResult{
		Pin:         r.Pin,
		EndedAt:     r.EndedAt,
		Questions:   r.Questions,
		Leaderboard: r.Leaderboard,
		Badges:      r.Badges,
		Teams:       r.Teams,
	}
}

// ResultArchive writes ended games to the game_results table.
type ResultArchive struct {
	db *bun.DB
}

// OpenDB opens a bun handle on a Postgres DSN.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func NewResultArchive(db *bun.DB) *ResultArchive {
	return &ResultArchive{db: db}
}

func (a *ResultArchive) Archive(ctx context.Context, result domain.GameResult) error {
	row := gameResultRow{
		Pin:         result.Pin,
		EndedAt:     result.EndedAt,
		Questions:   result.Questions,
		Leaderboard: result.Leaderboard,
		Badges:      result.Badges,
		Teams:       result.Teams,
	}
	if _, err := a.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("archive result %s: %w", result.Pin, err)
	}
	return nil
}

// LatestResult returns the most recent archived game for pin. Pins are reused once rooms expire.
func (a *ResultArchive) LatestResult(ctx context.Context, pin string) (domain.GameResult, error) {
	var row gameResultRow
	err := a.db.NewSelect().
		Model(&row).
		Where("pin = ?", pin).
		Order("ended_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameResult{}, fmt.Errorf("%w: no archived result for %s", domain.ErrRoomNotFound, pin)
	}
	if err != nil {
		return domain.GameResult{}, fmt.Errorf("load result %s: %w", pin, err)
	}
	return row.toDomain(), nil
}
