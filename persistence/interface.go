// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/ludoserver/config"
	"github.com/wfunc/ludoserver/models"
)

// Database 对局归档接口
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error)
	ListRecentGames(ctx context.Context, limit int) ([]models.GameRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownDriver  = errors.New("unknown database driver")
)

const defaultListLimit = 20

// Open connects the archive backend selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (Database, error) {
	switch cfg.Driver {
	case "gorm":
		return NewGormPostgreSQL(cfg.Postgres.DSN())
	case "pq":
		return NewPostgreSQL(cfg.Postgres.DSN())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultListLimit
	}
	return limit
}
