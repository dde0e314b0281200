package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/battle"
	"github.com/dunelords/dune-server-go/internal/config"
)

// DB wraps the pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to the database and ensures the schema exists.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := &DB{pool: pool, logger: logger}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected")
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS battle_reports (
			id          UUID PRIMARY KEY,
			game_id     TEXT NOT NULL,
			turn        INT NOT NULL,
			territory   TEXT NOT NULL,
			sector      INT NOT NULL,
			aggressor   TEXT NOT NULL,
			defender    TEXT NOT NULL,
			winner      TEXT,
			result      JSONB NOT NULL,
			events      JSONB NOT NULL,
			resolved_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate battle_reports: %w", err)
	}
	return nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// BattleReport is one resolved battle's persisted record.
type BattleReport struct {
	ID         string
	GameID     string
	Turn       int
	Territory  string
	Sector     int
	Aggressor  string
	Defender   string
	Winner     string
	Result     *battle.BattleResult
	Events     []battle.Event
	ResolvedAt time.Time
}

// BattleReportStore persists one row per resolved battle.
type BattleReportStore struct {
	db *DB
}

// NewBattleReportStore creates the store.
func NewBattleReportStore(db *DB) *BattleReportStore {
	return &BattleReportStore{db: db}
}

// Create inserts a battle report.
func (s *BattleReportStore) Create(ctx context.Context, report *BattleReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.ResolvedAt.IsZero() {
		report.ResolvedAt = time.Now().UTC()
	}
	resultJSON, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("marshal battle result: %w", err)
	}
	eventsJSON, err := json.Marshal(report.Events)
	if err != nil {
		return fmt.Errorf("marshal battle events: %w", err)
	}
	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO battle_reports
			(id, game_id, turn, territory, sector, aggressor, defender, winner, result, events, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		report.ID, report.GameID, report.Turn, report.Territory, report.Sector,
		report.Aggressor, report.Defender, report.Winner, resultJSON, eventsJSON,
		report.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert battle report: %w", err)
	}
	s.db.logger.Debug("battle report persisted",
		zap.String("report_id", report.ID),
		zap.String("territory", report.Territory),
	)
	return nil
}

// ListByGame returns the reports recorded for a game, oldest first.
func (s *BattleReportStore) ListByGame(ctx context.Context, gameID string) ([]*BattleReport, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, game_id, turn, territory, sector, aggressor, defender, winner, result, events, resolved_at
		FROM battle_reports WHERE game_id = $1 ORDER BY resolved_at`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("query battle reports: %w", err)
	}
	defer rows.Close()

	var reports []*BattleReport
	for rows.Next() {
		var (
			r          BattleReport
			resultJSON []byte
			eventsJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.GameID, &r.Turn, &r.Territory, &r.Sector,
			&r.Aggressor, &r.Defender, &r.Winner, &resultJSON, &eventsJSON, &r.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan battle report: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
			return nil, fmt.Errorf("unmarshal battle result: %w", err)
		}
		if err := json.Unmarshal(eventsJSON, &r.Events); err != nil {
			return nil, fmt.Errorf("unmarshal battle events: %w", err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
