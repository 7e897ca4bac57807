package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"codeforces-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type SyncLogRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSyncLogRepository(sqlDB *sql.DB, logger zerolog.Logger) *SyncLogRepository {
	return &SyncLogRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Append writes one immutable run-outcome row.
func (r *SyncLogRepository) Append(ctx context.Context, entry *domain.SyncLogEntry) error {
	if entry.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		entry.ID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, student_id, sync_type, status,
			error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.StudentID, string(entry.SyncType),
		string(entry.Status), entry.ErrorMessage, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// ListByStudent returns the most recent entries for a student.
func (r *SyncLogRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]domain.SyncLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, sync_type, status, error_message, created_at
		FROM sync_logs
		WHERE student_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.SyncLogEntry{}
	for rows.Next() {
		var e domain.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.StudentID, &e.SyncType, &e.Status,
			&e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStudent is used by tests and observability checks.
func (r *SyncLogRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sync_logs WHERE student_id = ?`, studentID).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return count, nil
}
