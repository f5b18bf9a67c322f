// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomCode   string `gorm:"index;not null"`
	WinnerID   string `gorm:"not null"`
	WinnerName string `gorm:"not null"`
	LogLines   int    `gorm:"default:0"`
	StartedAt  time.Time
	FinishedAt time.Time `gorm:"index"`
	Duration   int       `gorm:"default:0"` // 游戏时长(秒)

	Players []GormGamePlayer `gorm:"foreignKey:GameRecordID;constraint:OnDelete:CASCADE"`
}

// GormGamePlayer 对局中的一名玩家
type GormGamePlayer struct {
	gorm.Model
	GameRecordID uint   `gorm:"index;not null"`
	PlayerID     string `gorm:"not null"`
	Name         string `gorm:"index;not null"`
	Color        string `gorm:"not null"`
	Finished     int    `gorm:"default:0"`
	Winner       bool   `gorm:"default:false"`
}

// 与 lib/pq 实现共用同一套表名
func (GormGameRecord) TableName() string { return "game_records" }
func (GormGamePlayer) TableName() string { return "game_players" }

// NewGormGameRecord converts an archive record into its table rows.
func NewGormGameRecord(r *GameRecord) *GormGameRecord {
	g := &GormGameRecord{
		RoomCode:   r.RoomCode,
		WinnerID:   r.WinnerID,
		WinnerName: r.WinnerName,
		LogLines:   r.LogLines,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Duration:   r.Duration,
		Players:    make([]GormGamePlayer, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		g.Players = append(g.Players, GormGamePlayer{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Color:    p.Color,
			Finished: p.Finished,
			Winner:   p.Winner,
		})
	}
	return g
}

// ToRecord converts table rows back into an archive record.
func (g *GormGameRecord) ToRecord() GameRecord {
	r := GameRecord{
		ID:         g.ID,
		RoomCode:   g.RoomCode,
		WinnerID:   g.WinnerID,
		WinnerName: g.WinnerName,
		LogLines:   g.LogLines,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
		Duration:   g.Duration,
		Players:    make([]GamePlayer, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		r.Players = append(r.Players, GamePlayer{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Color:    p.Color,
			Finished: p.Finished,
			Winner:   p.Winner,
		})
	}
	return r
}
