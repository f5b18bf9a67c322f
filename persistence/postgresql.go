// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wfunc/ludoserver/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 基于 lib/pq 的原生 SQL 实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return &PostgreSQL{db: db}, nil
}

// schema 与 GORM AutoMigrate 生成的表兼容
var schema = []string{
	`CREATE TABLE IF NOT EXISTS game_records (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMPTZ,
		room_code TEXT NOT NULL,
		winner_id TEXT NOT NULL,
		winner_name TEXT NOT NULL,
		log_lines BIGINT DEFAULT 0,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		duration BIGINT DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS game_players (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMPTZ,
		game_record_id BIGINT NOT NULL REFERENCES game_records(id) ON DELETE CASCADE,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		finished BIGINT DEFAULT 0,
		winner BOOLEAN DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code)`,
	`CREATE INDEX IF NOT EXISTS idx_game_records_finished_at ON game_records(finished_at)`,
	`CREATE INDEX IF NOT EXISTS idx_game_players_game_record_id ON game_players(game_record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_game_players_name ON game_players(name)`,
}

func initTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveGameRecord 在一个事务里写入对局和玩家
func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO game_records (room_code, winner_id, winner_name, log_lines, started_at, finished_at, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		record.RoomCode, record.WinnerID, record.WinnerName, record.LogLines,
		record.StartedAt, record.FinishedAt, record.Duration,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("save game %s: %w", record.RoomCode, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_players (game_record_id, player_id, name, color, finished, winner)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pl := range record.Players {
		if _, err := stmt.ExecContext(ctx, id, pl.PlayerID, pl.Name, pl.Color, pl.Finished, pl.Winner); err != nil {
			return fmt.Errorf("save player %s: %w", pl.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	record.ID = uint(id)
	return nil
}

// GetPlayerStats 统计某个名字的总局数和胜局数
func (p *PostgreSQL) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := &models.PlayerStats{Name: name}
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN winner THEN 1 ELSE 0 END), 0)
		FROM game_players
		WHERE name = $1 AND deleted_at IS NULL`, name,
	).Scan(&stats.TotalGames, &stats.Wins)
	if err != nil {
		return nil, err
	}
	if stats.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return stats, nil
}

func (p *PostgreSQL) ListRecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, room_code, winner_id, winner_name, log_lines, started_at, finished_at, duration
		FROM game_records
		WHERE deleted_at IS NULL
		ORDER BY finished_at DESC
		LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		records []models.GameRecord
		ids     []int64
		index   = make(map[int64]int)
	)
	for rows.Next() {
		var (
			r  models.GameRecord
			id int64
		)
		if err := rows.Scan(&id, &r.RoomCode, &r.WinnerID, &r.WinnerName, &r.LogLines,
			&r.StartedAt, &r.FinishedAt, &r.Duration); err != nil {
			return nil, err
		}
		r.ID = uint(id)
		index[id] = len(records)
		ids = append(ids, id)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return records, nil
	}

	// 一次查询取回全部玩家
	prows, err := p.db.QueryContext(ctx, `
		SELECT game_record_id, player_id, name, color, finished, winner
		FROM game_players
		WHERE game_record_id = ANY($1) AND deleted_at IS NULL
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var (
			gameID int64
			pl     models.GamePlayer
		)
		if err := prows.Scan(&gameID, &pl.PlayerID, &pl.Name, &pl.Color, &pl.Finished, &pl.Winner); err != nil {
			return nil, err
		}
		if i, ok := index[gameID]; ok {
			records[i].Players = append(records[i].Players, pl)
		}
	}
	return records, prows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
