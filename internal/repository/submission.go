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

type SubmissionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSubmissionRepository(sqlDB *sql.DB, logger zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// ReplaceForStudent swaps the student's full submission set inside a
// single transaction. Same contract as the contest replace: never called
// with an empty set.
func (r *SubmissionRepository) ReplaceForStudent(ctx context.Context, studentID string, submissions []domain.SubmissionRecord) error {
	if len(submissions) == 0 {
		return fmt.Errorf("refusing to replace submissions with empty set for student %s", studentID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM submissions WHERE student_id = ?`, studentID); err != nil {
		return fmt.Errorf("delete submissions: %w", err)
	}

	for _, submission := range submissions {
		id := submission.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (id, student_id, submission_id,
				problem_name, rating, verdict, submission_time, language)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, studentID, submission.SubmissionID, submission.ProblemName,
			submission.Rating, submission.Verdict, submission.SubmissionTime,
			submission.Language); err != nil {
			return fmt.Errorf("insert submission %s: %w", submission.SubmissionID, err)
		}
	}

	return tx.Commit()
}

// ListByStudent returns the student's submissions since the given time,
// newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string, since time.Time) ([]domain.SubmissionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, submission_id, problem_name, rating, verdict,
			submission_time, language
		FROM submissions
		WHERE student_id = ? AND submission_time >= ?
		ORDER BY submission_time DESC`,
		studentID, since)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []domain.SubmissionRecord{}
	for rows.Next() {
		var s domain.SubmissionRecord
		if err := rows.Scan(&s.ID, &s.StudentID, &s.SubmissionID,
			&s.ProblemName, &s.Rating, &s.Verdict, &s.SubmissionTime,
			&s.Language); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *SubmissionRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE student_id = ?`, studentID).Scan(&count)
	return count, err
}
