// services/record_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/ludo"
	"github.com/wfunc/ludoserver/models"
	"github.com/wfunc/ludoserver/persistence"
	"github.com/wfunc/ludoserver/room"
)

// ErrArchiveDisabled is returned by queries when no database is configured.
var ErrArchiveDisabled = errors.New("game archive disabled")

const saveTimeout = 10 * time.Second

// RecordService 把结束的对局写入归档。db 为 nil 时所有写入都是空操作。
type RecordService struct {
	db  persistence.Database
	now func() time.Time
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db, now: time.Now}
}

// Enabled reports whether finished games are archived.
func (s *RecordService) Enabled() bool {
	return s != nil && s.db != nil
}

// BuildRecord turns the snapshot of a finished room into an archive record.
func BuildRecord(snap room.Snapshot, finishedAt time.Time) *models.GameRecord {
	rec := &models.GameRecord{
		RoomCode:   snap.Code,
		WinnerID:   snap.Winner,
		LogLines:   len(snap.Log),
		StartedAt:  snap.StartedAt,
		FinishedAt: finishedAt,
		Players:    make([]models.GamePlayer, 0, len(snap.Players)),
	}
	if !snap.StartedAt.IsZero() {
		rec.Duration = int(finishedAt.Sub(snap.StartedAt).Seconds())
	}

	for _, p := range snap.Players {
		winner := p.ID == snap.Winner
		if winner {
			rec.WinnerName = p.Name
		}
		rec.Players = append(rec.Players, models.GamePlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Color:    string(p.Color),
			Finished: ludo.FinishedCount(p.Pieces),
			Winner:   winner,
		})
	}
	return rec
}

// RecordGame archives a finished room.
func (s *RecordService) RecordGame(ctx context.Context, snap room.Snapshot) error {
	if !s.Enabled() {
		return nil
	}
	if snap.Winner == "" {
		return errors.New("room has no winner")
	}

	rec := BuildRecord(snap, s.now())
	if err := s.db.SaveGameRecord(ctx, rec); err != nil {
		return err
	}
	logger.Log.Infow("game archived", "room", rec.RoomCode, "id", rec.ID, "winner", rec.WinnerName)
	return nil
}

// RecordGameAsync archives in the background so the room lock holder never
// waits on the database.
func (s *RecordService) RecordGameAsync(snap room.Snapshot) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.RecordGame(ctx, snap); err != nil {
			logger.Log.Errorw("archive game failed", "room", snap.Code, "error", err)
		}
	}()
}

func (s *RecordService) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	if !s.Enabled() {
		return nil, ErrArchiveDisabled
	}
	return s.db.GetPlayerStats(ctx, name)
}

func (s *RecordService) RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	if !s.Enabled() {
		return nil, ErrArchiveDisabled
	}
	return s.db.ListRecentGames(ctx, limit)
}
