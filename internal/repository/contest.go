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

type ContestRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewContestRepository(sqlDB *sql.DB, logger zerolog.Logger) *ContestRepository {
	return &ContestRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// ReplaceForStudent swaps the student's full contest set for the given
// one inside a single transaction, so readers only ever observe the old
// set or the new set. Callers must not pass an empty set; an empty fetch
// means the existing rows stay untouched.
func (r *ContestRepository) ReplaceForStudent(ctx context.Context, studentID string, contests []domain.ContestResult) error {
	if len(contests) == 0 {
		return fmt.Errorf("refusing to replace contests with empty set for student %s", studentID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contests WHERE student_id = ?`, studentID); err != nil {
		return fmt.Errorf("delete contests: %w", err)
	}

	for _, contest := range contests {
		id := contest.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contests (id, student_id, contest_id, name,
				contest_date, contest_rank, rating_change, new_rating,
				problems_solved, total_problems)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, studentID, contest.ContestID, contest.Name, contest.Date,
			contest.Rank, contest.RatingChange, contest.NewRating,
			contest.ProblemsSolved, contest.TotalProblems); err != nil {
			return fmt.Errorf("insert contest %s: %w", contest.ContestID, err)
		}
	}

	return tx.Commit()
}

// ListByStudent returns the student's contests inside the day window,
// newest first. since zero means no window.
func (r *ContestRepository) ListByStudent(ctx context.Context, studentID string, since time.Time) ([]domain.ContestResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, contest_id, name, contest_date, contest_rank,
			rating_change, new_rating, problems_solved, total_problems
		FROM contests
		WHERE student_id = ? AND contest_date >= ?
		ORDER BY contest_date DESC`,
		studentID, since)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	defer rows.Close()

	contests := []domain.ContestResult{}
	for rows.Next() {
		var c domain.ContestResult
		if err := rows.Scan(&c.ID, &c.StudentID, &c.ContestID, &c.Name,
			&c.Date, &c.Rank, &c.RatingChange, &c.NewRating,
			&c.ProblemsSolved, &c.TotalProblems); err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (r *ContestRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contests WHERE student_id = ?`, studentID).Scan(&count)
	return count, err
}
