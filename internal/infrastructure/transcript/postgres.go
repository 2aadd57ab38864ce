package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voicebroker/internal/domain/transcript"
)

type transcriptRow struct {
	ID              string    `gorm:"column:id;primaryKey"`
	SessionID       string    `gorm:"column:session_id;index"`
	Role            string    `gorm:"column:role"`
	Text            string    `gorm:"column:text"`
	IsTranscription bool      `gorm:"column:is_transcription"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (transcriptRow) TableName() string {
	return "transcript_messages"
}

// PostgresStore is a gorm-backed transcript sink.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to Postgres and ensures the transcript table
// exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.WithContext(ctx).Raw("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&transcriptRow{}); err != nil {
		return nil, fmt.Errorf("migrate transcript table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Append adds a record to a session's transcript.
func (s *PostgresStore) Append(ctx context.Context, sessionID string, rec transcript.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	row := transcriptRow{
		ID:              uuid.New().String(),
		SessionID:       sessionID,
		Role:            rec.Role,
		Text:            rec.Text,
		IsTranscription: rec.IsTranscription,
		CreatedAt:       rec.Timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create transcript record: %w", err)
	}
	return nil
}

// History returns a session's records in append order.
func (s *PostgresStore) History(ctx context.Context, sessionID string) ([]transcript.Record, error) {
	var rows []transcriptRow
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query transcript records: %w", err)
	}

	out := make([]transcript.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, transcript.Record{
			Role:            row.Role,
			Text:            row.Text,
			Timestamp:       row.CreatedAt,
			IsTranscription: row.IsTranscription,
		})
	}
	return out, nil
}
