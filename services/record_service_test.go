package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/ludoserver/ludo"
	"github.com/wfunc/ludoserver/models"
	"github.com/wfunc/ludoserver/persistence"
	"github.com/wfunc/ludoserver/room"
)

// memoryDatabase is an in-memory persistence.Database.
type memoryDatabase struct {
	mu      sync.Mutex
	records []models.GameRecord
	saved   chan struct{}
	failErr error
}

func newMemoryDatabase() *memoryDatabase {
	return &memoryDatabase{saved: make(chan struct{}, 8)}
}

func (d *memoryDatabase) SaveGameRecord(ctx context.Context, r *models.GameRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failErr != nil {
		return d.failErr
	}
	r.ID = uint(len(d.records) + 1)
	d.records = append(d.records, *r)
	d.saved <- struct{}{}
	return nil
}

func (d *memoryDatabase) GetPlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := &models.PlayerStats{Name: name}
	for _, r := range d.records {
		for _, p := range r.Players {
			if p.Name == name {
				stats.TotalGames++
				if p.Winner {
					stats.Wins++
				}
			}
		}
	}
	if stats.TotalGames == 0 {
		return nil, persistence.ErrRecordNotFound
	}
	return stats, nil
}

func (d *memoryDatabase) ListRecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.GameRecord(nil), d.records...), nil
}

func (d *memoryDatabase) Close() error { return nil }

func finishedSnapshot(started time.Time) room.Snapshot {
	return room.Snapshot{
		Code:  "ABC234",
		Phase: "finished",
		Players: []room.PlayerPieces{
			{
				PlayerInfo: room.PlayerInfo{ID: "p1", Name: "Alice", Color: ludo.Red},
				Pieces:     ludo.Pieces{ludo.Finished, ludo.Finished, ludo.Finished, ludo.Finished},
			},
			{
				PlayerInfo: room.PlayerInfo{ID: "p2", Name: "Bob", Color: ludo.Green},
				Pieces:     ludo.Pieces{ludo.Finished, 12, ludo.Base, ludo.Base},
			},
		},
		Log:       []string{"Game started!", "Alice has won the game!"},
		Winner:    "p1",
		StartedAt: started,
	}
}

func TestBuildRecord(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := BuildRecord(finishedSnapshot(start), start.Add(5*time.Minute))

	if rec.WinnerName != "Alice" || rec.WinnerID != "p1" {
		t.Errorf("Unexpected winner %q/%q", rec.WinnerID, rec.WinnerName)
	}
	if rec.Duration != 300 {
		t.Errorf("Expected duration 300s, got %d", rec.Duration)
	}
	if rec.LogLines != 2 {
		t.Errorf("Expected 2 log lines, got %d", rec.LogLines)
	}
	if len(rec.Players) != 2 {
		t.Fatalf("Expected 2 players, got %d", len(rec.Players))
	}
	if !rec.Players[0].Winner || rec.Players[0].Finished != 4 || rec.Players[0].Color != "red" {
		t.Errorf("Unexpected winner row %+v", rec.Players[0])
	}
	if rec.Players[1].Winner || rec.Players[1].Finished != 1 {
		t.Errorf("Unexpected loser row %+v", rec.Players[1])
	}
}

func TestRecordService_Disabled(t *testing.T) {
	s := NewRecordService(nil)
	if s.Enabled() {
		t.Fatal("Service without a database should be disabled")
	}
	if err := s.RecordGame(context.Background(), finishedSnapshot(time.Now())); err != nil {
		t.Errorf("Disabled recorder should be a no-op, got %v", err)
	}
	if _, err := s.PlayerStats(context.Background(), "Alice"); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("Expected ErrArchiveDisabled, got %v", err)
	}
	s.RecordGameAsync(finishedSnapshot(time.Now()))
}

func TestRecordService_RecordAndStats(t *testing.T) {
	db := newMemoryDatabase()
	s := NewRecordService(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.RecordGame(ctx, finishedSnapshot(time.Now().Add(-time.Minute))); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}

	stats, err := s.PlayerStats(ctx, "Bob")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if stats.TotalGames != 2 || stats.Wins != 0 || stats.Losses() != 2 {
		t.Errorf("Unexpected stats for Bob %+v", stats)
	}

	games, err := s.RecentGames(ctx, 10)
	if err != nil || len(games) != 2 {
		t.Fatalf("Expected 2 archived games, got %d (%v)", len(games), err)
	}

	if _, err := s.PlayerStats(ctx, "Nobody"); !errors.Is(err, persistence.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordService_RejectsUnfinished(t *testing.T) {
	s := NewRecordService(newMemoryDatabase())
	snap := finishedSnapshot(time.Now())
	snap.Winner = ""
	if err := s.RecordGame(context.Background(), snap); err == nil {
		t.Error("Expected an error for a room without a winner")
	}
}

func TestRecordService_Async(t *testing.T) {
	db := newMemoryDatabase()
	s := NewRecordService(db)
	s.RecordGameAsync(finishedSnapshot(time.Now()))

	select {
	case <-db.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("Async record was not saved")
	}
}
