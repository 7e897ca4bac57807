package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codeforces-tracker/internal/domain"
	"codeforces-tracker/internal/errs"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type StudentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStudentRepository(sqlDB *sql.DB, logger zerolog.Logger) *StudentRepository {
	return &StudentRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const studentColumns = `id, name, email, phone, codeforces_handle, current_rating,
	max_rating, reminder_count, auto_email_enabled, last_updated, created_at`

func scanStudent(row *sql.Row) (*domain.Student, error) {
	var s domain.Student
	var lastUpdated sql.NullTime
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.CodeforcesHandle,
		&s.CurrentRating, &s.MaxRating, &s.ReminderCount, &s.AutoEmailEnabled,
		&lastUpdated, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastUpdated.Valid {
		s.LastUpdated = lastUpdated.Time
	}
	return &s, nil
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	var lastUpdated any
	if !student.LastUpdated.IsZero() {
		lastUpdated = student.LastUpdated
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, email, phone, codeforces_handle,
			current_rating, max_rating, reminder_count, auto_email_enabled,
			last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.Name, student.Email, student.Phone,
		student.CodeforcesHandle, student.CurrentRating, student.MaxRating,
		student.ReminderCount, student.AutoEmailEnabled, lastUpdated,
		student.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("student_id", student.ID).Msg("failed to insert student")
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (r *StudentRepository) Get(ctx context.Context, id string) (*domain.Student, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	return scanStudent(row)
}

func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := []domain.Student{}
	for rows.Next() {
		var s domain.Student
		var lastUpdated sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone,
			&s.CodeforcesHandle, &s.CurrentRating, &s.MaxRating,
			&s.ReminderCount, &s.AutoEmailEnabled, &lastUpdated,
			&s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		if lastUpdated.Valid {
			s.LastUpdated = lastUpdated.Time
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Update overwrites the caller-editable fields. Rating fields are owned
// by the sync pipeline and are not touched here.
func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = ?, email = ?, phone = ?, codeforces_handle = ?,
			auto_email_enabled = ?
		WHERE id = ?`,
		student.Name, student.Email, student.Phone, student.CodeforcesHandle,
		student.AutoEmailEnabled, student.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireRow(res)
}

// UpdateRatings persists the profile fields owned by the sync pipeline,
// unconditionally overwriting prior values.
func (r *StudentRepository) UpdateRatings(ctx context.Context, id string, currentRating, maxRating int, lastUpdated time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET current_rating = ?, max_rating = ?, last_updated = ?
		WHERE id = ?`,
		currentRating, maxRating, lastUpdated, id)
	if err != nil {
		return fmt.Errorf("update student ratings: %w", err)
	}
	return requireRow(res)
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrStudentNotFound
	}
	return nil
}
