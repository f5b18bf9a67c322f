// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(dsn string) (*GormPostgreSQL, error) {
	// GORM 日志写入 zap
	gormLogger := gormlogger.New(
		zap.NewStdLog(logger.Log.Desugar()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}, &models.GormGamePlayer{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 在一个事务里写入对局和玩家
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	row := models.NewGormGameRecord(record)
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return fmt.Errorf("save game %s: %w", record.RoomCode, err)
	}
	record.ID = row.ID
	return nil
}

// GetPlayerStats 统计某个名字的总局数和胜局数
func (p *GormPostgreSQL) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	var row struct {
		TotalGames int
		Wins       int
	}
	err := p.db.WithContext(ctx).
		Model(&models.GormGamePlayer{}).
		Select("COUNT(*) AS total_games, COALESCE(SUM(CASE WHEN winner THEN 1 ELSE 0 END), 0) AS wins").
		Where("name = ?", name).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.TotalGames == 0 {
		return nil, ErrRecordNotFound
	}
	return &models.PlayerStats{Name: name, TotalGames: row.TotalGames, Wins: row.Wins}, nil
}

func (p *GormPostgreSQL) ListRecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	err := p.db.WithContext(ctx).
		Preload("Players").
		Order("finished_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}
	return records, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
