package service

import (
	"context"
	"fmt"
	"time"

	"codeforces-tracker/internal/constants"
	"codeforces-tracker/internal/convert"
	"codeforces-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CategoryOutcome reports one contained reconciliation step. A non-nil
// Err means the category was left as it was; it never fails the run.
type CategoryOutcome struct {
	Category string
	Applied  int
	Skipped  int
	Err      error
}

func (o CategoryOutcome) Contained() bool { return o.Err != nil }

// RunReport is the result of one reconciliation run that got past the
// profile step.
type RunReport struct {
	StudentID     string
	Handle        string
	CurrentRating int
	MaxRating     int
	Contests      CategoryOutcome
	Submissions   CategoryOutcome
}

// SyncService pulls a student's remote profile, contest history and
// submission history from Codeforces and replaces the locally cached
// view. Profile fetch and persist are load-bearing; contest and
// submission reconciliation are independent best-effort steps.
type SyncService struct {
	judge       JudgeClient
	students    StudentStore
	contests    ContestStore
	submissions SubmissionStore
	syncLog     SyncLogStore
	logger      zerolog.Logger

	// Concurrent triggers for the same student coalesce into one run.
	group singleflight.Group
}

func NewSyncService(judge JudgeClient, students StudentStore, contests ContestStore, submissions SubmissionStore, syncLog SyncLogStore, logger zerolog.Logger) *SyncService {
	return &SyncService{
		judge:       judge,
		students:    students,
		contests:    contests,
		submissions: submissions,
		syncLog:     syncLog,
		logger:      logger,
	}
}

// Sync runs one reconciliation for the student. A second trigger while a
// run for the same student is in flight joins that run and shares its
// result.
func (s *SyncService) Sync(ctx context.Context, studentID string, syncType domain.SyncType) (*RunReport, error) {
	v, err, shared := s.group.Do(studentID, func() (any, error) {
		return s.run(ctx, studentID, syncType)
	})
	if shared {
		s.logger.Debug().Str("student_id", studentID).Msg("joined in-flight sync run")
	}
	if err != nil {
		return nil, err
	}
	return v.(*RunReport), nil
}

func (s *SyncService) run(ctx context.Context, studentID string, syncType domain.SyncType) (*RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("student_id", studentID).Str("sync_type", string(syncType)).Msg("starting sync")

	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		// No log entry here: it would point at a row that does not exist.
		s.logger.Error().Err(err).Str("student_id", studentID).Msg("student lookup failed")
		return nil, err
	}

	handle := student.CodeforcesHandle
	s.logger.Info().Str("student_id", studentID).Str("handle", handle).Msg("syncing data for handle")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	user, err := s.judge.GetUserInfo(apiCtx, handle)
	apiCancel()
	if err != nil {
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to fetch user info")
		s.appendLog(ctx, studentID, syncType, domain.SyncStatusFailure, err)
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	currentRating, maxRating := convert.ProfileRatings(*user)
	if err := s.students.UpdateRatings(ctx, studentID, currentRating, maxRating, time.Now().UTC()); err != nil {
		s.logger.Error().Err(err).Str("student_id", studentID).Msg("failed to update student ratings")
		s.appendLog(ctx, studentID, syncType, domain.SyncStatusFailure, err)
		return nil, fmt.Errorf("update student ratings: %w", err)
	}

	report := &RunReport{
		StudentID:     studentID,
		Handle:        handle,
		CurrentRating: currentRating,
		MaxRating:     maxRating,
	}

	// Contest and submission reconciliation are independent of each
	// other: each failure is contained in its own outcome.
	g := new(errgroup.Group)
	g.Go(func() error {
		report.Contests = s.reconcileContests(ctx, studentID, handle)
		return nil
	})
	g.Go(func() error {
		report.Submissions = s.reconcileSubmissions(ctx, studentID, handle)
		return nil
	})
	_ = g.Wait() // goroutines report through their outcomes, never errors

	s.appendLog(ctx, studentID, syncType, domain.SyncStatusSuccess, nil)

	s.logger.Info().
		Str("student_id", studentID).
		Int("contests_applied", report.Contests.Applied).
		Int("submissions_applied", report.Submissions.Applied).
		Bool("contests_contained", report.Contests.Contained()).
		Bool("submissions_contained", report.Submissions.Contained()).
		Msg("sync completed")

	return report, nil
}

// reconcileContests fetches the rating history and replaces the local
// contest set. An error or an empty remote list leaves existing rows
// untouched: the delete only happens with a non-empty replacement in hand.
func (s *SyncService) reconcileContests(ctx context.Context, studentID, handle string) CategoryOutcome {
	outcome := CategoryOutcome{Category: "contests"}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	raws, err := s.judge.GetRatingHistory(apiCtx, handle)
	if err != nil {
		s.logger.Warn().Err(err).Str("handle", handle).Msg("failed to fetch contest history")
		outcome.Err = err
		return outcome
	}
	if len(raws) == 0 {
		s.logger.Debug().Str("handle", handle).Msg("no contests returned, keeping existing rows")
		return outcome
	}

	contests, skipped := convert.ContestResults(studentID, raws)
	outcome.Skipped = skipped
	if len(contests) == 0 {
		s.logger.Warn().Str("handle", handle).Int("skipped", skipped).Msg("all contest records incomplete, keeping existing rows")
		return outcome
	}

	if err := s.contests.ReplaceForStudent(ctx, studentID, contests); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to replace contests")
		outcome.Err = err
		return outcome
	}

	outcome.Applied = len(contests)
	s.logger.Info().Str("student_id", studentID).Int("count", len(contests)).Msg("contests replaced")
	return outcome
}

// reconcileSubmissions mirrors reconcileContests for the bounded page of
// most recent submissions.
func (s *SyncService) reconcileSubmissions(ctx context.Context, studentID, handle string) CategoryOutcome {
	outcome := CategoryOutcome{Category: "submissions"}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	raws, err := s.judge.GetSubmissions(apiCtx, handle, constants.SubmissionFetchFrom, constants.SubmissionFetchCount)
	if err != nil {
		s.logger.Warn().Err(err).Str("handle", handle).Msg("failed to fetch submissions")
		outcome.Err = err
		return outcome
	}
	if len(raws) == 0 {
		s.logger.Debug().Str("handle", handle).Msg("no submissions returned, keeping existing rows")
		return outcome
	}

	submissions, skipped := convert.SubmissionRecords(studentID, raws)
	outcome.Skipped = skipped
	if len(submissions) == 0 {
		s.logger.Warn().Str("handle", handle).Int("skipped", skipped).Msg("all submission records incomplete, keeping existing rows")
		return outcome
	}

	if err := s.submissions.ReplaceForStudent(ctx, studentID, submissions); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to replace submissions")
		outcome.Err = err
		return outcome
	}

	outcome.Applied = len(submissions)
	s.logger.Info().Str("student_id", studentID).Int("count", len(submissions)).Msg("submissions replaced")
	return outcome
}

// appendLog records the run outcome. Logging is diagnostic
// infrastructure: append errors are swallowed, never propagated.
func (s *SyncService) appendLog(ctx context.Context, studentID string, syncType domain.SyncType, status domain.SyncStatus, runErr error) {
	entry := &domain.SyncLogEntry{
		StudentID: studentID,
		SyncType:  syncType,
		Status:    status,
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	if err := s.syncLog.Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to append sync log entry")
	}
}

// SyncHistory exposes recent run outcomes for a student.
func (s *SyncService) SyncHistory(ctx context.Context, studentID string) ([]domain.SyncLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	return s.syncLog.ListByStudent(ctx, studentID, constants.SyncLogListLimit)
}
