package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Result is a finished game as handed over by a room.
type Result struct {
	GameCode   string
	WinnerID   string
	WinnerName string
	Seats      int
	Ticks      int
	StartedAt  time.Time
	EndedAt    time.Time
}

// MatchResult is the persisted row.
type MatchResult struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GameCode   string    `gorm:"size:16;index" json:"game_code"`
	WinnerID   string    `gorm:"size:64" json:"winner_id"`
	WinnerName string    `gorm:"size:64" json:"winner_name"`
	Seats      int       `json:"seats"`
	Ticks      int       `json:"ticks"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `gorm:"index" json:"ended_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, r Result) error
	Recent(ctx context.Context, limit int) ([]MatchResult, error)
}

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the results table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	if err := db.AutoMigrate(&MatchResult{}); err != nil {
		return nil, fmt.Errorf("migrate results: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, r Result) error {
	row := toRow(r)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record result %s: %w", r.GameCode, err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]MatchResult, error) {
	var rows []MatchResult
	err := s.db.WithContext(ctx).Order("ended_at desc").Limit(clampLimit(limit)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return rows, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Nop discards results. It is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Result) error { return nil }

func (Nop) Recent(context.Context, int) ([]MatchResult, error) { return []MatchResult{}, nil }

func toRow(r Result) MatchResult {
	return MatchResult{
		GameCode:   r.GameCode,
		WinnerID:   r.WinnerID,
		WinnerName: r.WinnerName,
		Seats:      r.Seats,
		Ticks:      r.Ticks,
		StartedAt:  r.StartedAt.UTC(),
		EndedAt:    r.EndedAt.UTC(),
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
