// models/models.go
package models

import (
	"time"
)

// GameRecord 一局结束对局的归档记录
type GameRecord struct {
	ID         uint         `json:"id,omitempty"`
	RoomCode   string       `json:"room_code"`
	WinnerID   string       `json:"winner_id"`
	WinnerName string       `json:"winner_name"`
	Players    []GamePlayer `json:"players"`
	LogLines   int          `json:"log_lines"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Duration   int          `json:"duration"` // 游戏时长(秒)
}

// GamePlayer 玩家信息（用于游戏记录）
type GamePlayer struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Finished int    `json:"finished"` // 到达终点的棋子数
	Winner   bool   `json:"winner"`
}

// PlayerStats 按玩家名字汇总的战绩
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
}

// Losses is every archived game the player did not win.
func (s PlayerStats) Losses() int {
	return s.TotalGames - s.Wins
}
