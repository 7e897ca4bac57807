package service

import (
	"context"
	"time"

	"codeforces-tracker/internal/constants"
	"codeforces-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// StudentService owns the student CRUD surface and the materialized read
// views. Creating or updating a student triggers a reconciliation run;
// the trigger's failure never fails the write itself.
type StudentService struct {
	students    StudentStore
	contests    ContestStore
	submissions SubmissionStore
	sync        *SyncService
	logger      zerolog.Logger
}

func NewStudentService(students StudentStore, contests ContestStore, submissions SubmissionStore, sync *SyncService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students:    students,
		contests:    contests,
		submissions: submissions,
		sync:        sync,
		logger:      logger,
	}
}

func (s *StudentService) Create(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.students.Create(dbCtx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Str("student_id", student.ID).Str("handle", student.CodeforcesHandle).Msg("student created")

	s.triggerSync(ctx, student.ID, domain.SyncTypeOnCreate)

	return s.students.Get(ctx, student.ID)
}

func (s *StudentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.students.Get(ctx, id)
}

func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.students.List(ctx)
}

func (s *StudentService) Update(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.students.Update(dbCtx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Str("student_id", student.ID).Msg("student updated")

	// The handle may have changed; resync against it.
	s.triggerSync(ctx, student.ID, domain.SyncTypeOnUpdate)

	return s.students.Get(ctx, student.ID)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("student_id", id).Msg("student deleted")
	return nil
}

func (s *StudentService) triggerSync(ctx context.Context, studentID string, syncType domain.SyncType) {
	if _, err := s.sync.Sync(ctx, studentID, syncType); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("sync trigger failed")
	}
}

// Contests returns the student's contest history inside the day window.
func (s *StudentService) Contests(ctx context.Context, studentID string, days int) ([]domain.ContestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = constants.DefaultContestWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.contests.ListByStudent(ctx, studentID, since)
}

// Submissions returns the student's submissions inside the day window.
func (s *StudentService) Submissions(ctx context.Context, studentID string, days int) ([]domain.SubmissionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = constants.DefaultSubmissionWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.submissions.ListByStudent(ctx, studentID, since)
}
