package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeforces-tracker/internal/config"
	"codeforces-tracker/internal/database"
	"codeforces-tracker/internal/domain"
	"codeforces-tracker/internal/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedStudent(t *testing.T, repo *StudentRepository) *domain.Student {
	t.Helper()
	student := &domain.Student{
		Name:             "Alice",
		Email:            "alice@example.com",
		Phone:            "+1234567890",
		CodeforcesHandle: "alice_codes",
	}
	require.NoError(t, repo.Create(context.Background(), student))
	return student
}

func TestStudentCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, repo)
	require.NotEmpty(t, student.ID)

	got, err := repo.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice_codes", got.CodeforcesHandle)
	assert.Zero(t, got.CurrentRating)
	assert.True(t, got.LastUpdated.IsZero())

	student.Name = "Alice B."
	student.CodeforcesHandle = "alice_renamed"
	require.NoError(t, repo.Update(ctx, student))

	got, err = repo.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.Name)
	assert.Equal(t, "alice_renamed", got.CodeforcesHandle)

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)

	require.NoError(t, repo.Delete(ctx, student.ID))
	_, err = repo.Get(ctx, student.ID)
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)
}

func TestStudentNotFoundMapping(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)

	err = repo.Update(ctx, &domain.Student{ID: "missing"})
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)

	err = repo.UpdateRatings(ctx, "missing", 1500, 1600, time.Now())
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)

	err = repo.Delete(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)
}

func TestUpdateRatingsOverwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, repo)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateRatings(ctx, student.ID, 1522, 1545, now))

	got, err := repo.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1522, got.CurrentRating)
	assert.Equal(t, 1545, got.MaxRating)
	assert.WithinDuration(t, now, got.LastUpdated, time.Second)

	// A later sync overwrites unconditionally, even downward.
	require.NoError(t, repo.UpdateRatings(ctx, student.ID, 1400, 1545, now.Add(time.Hour)))
	got, err = repo.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1400, got.CurrentRating)
}

func contestRow(studentID, contestID string, date time.Time, change int) domain.ContestResult {
	return domain.ContestResult{
		StudentID:    studentID,
		ContestID:    contestID,
		Name:         "Round " + contestID,
		Date:         date,
		Rank:         100,
		RatingChange: change,
		NewRating:    1500 + change,
	}
}

func TestContestReplaceForStudent(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	contests := NewContestRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)
	now := time.Now().UTC().Truncate(time.Second)

	first := []domain.ContestResult{
		contestRow(student.ID, "1", now.Add(-48*time.Hour), 45),
		contestRow(student.ID, "2", now.Add(-24*time.Hour), -23),
	}
	require.NoError(t, contests.ReplaceForStudent(ctx, student.ID, first))

	got, err := contests.ListByStudent(ctx, student.ID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "2", got[0].ContestID)
	assert.Equal(t, -23, got[0].RatingChange)

	// Replacing swaps the whole set; the old local rows do not survive.
	second := []domain.ContestResult{
		contestRow(student.ID, "3", now, 12),
	}
	require.NoError(t, contests.ReplaceForStudent(ctx, student.ID, second))

	got, err = contests.ListByStudent(ctx, student.ID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ContestID)
}

func TestContestReplaceRefusesEmptySet(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	contests := NewContestRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)
	require.NoError(t, contests.ReplaceForStudent(ctx, student.ID,
		[]domain.ContestResult{contestRow(student.ID, "1", time.Now().UTC(), 45)}))

	err := contests.ReplaceForStudent(ctx, student.ID, nil)
	require.Error(t, err)

	count, err := contests.CountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestContestReplaceRollsBackOnInsertFailure(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	contests := NewContestRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)
	now := time.Now().UTC().Truncate(time.Second)

	existing := []domain.ContestResult{contestRow(student.ID, "1", now, 45)}
	require.NoError(t, contests.ReplaceForStudent(ctx, student.ID, existing))

	// Duplicate explicit primary keys make the second insert fail; the
	// whole replace must roll back, leaving the old set intact.
	bad := []domain.ContestResult{
		contestRow(student.ID, "2", now, 1),
		contestRow(student.ID, "3", now, 2),
	}
	bad[0].ID = "same-id"
	bad[1].ID = "same-id"

	err := contests.ReplaceForStudent(ctx, student.ID, bad)
	require.Error(t, err)

	got, err := contests.ListByStudent(ctx, student.ID, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ContestID)
}

func TestSubmissionReplaceAndWindow(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	submissions := NewSubmissionRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)
	now := time.Now().UTC().Truncate(time.Second)

	rows := []domain.SubmissionRecord{
		{StudentID: student.ID, SubmissionID: "10", ProblemName: "A", Rating: 800, Verdict: "OK", SubmissionTime: now.Add(-time.Hour), Language: "GNU C++17"},
		{StudentID: student.ID, SubmissionID: "11", ProblemName: "B", Verdict: "WRONG_ANSWER", SubmissionTime: now.Add(-40*24*time.Hour - time.Hour), Language: "Python 3"},
	}
	require.NoError(t, submissions.ReplaceForStudent(ctx, student.ID, rows))

	// 30-day window excludes the old submission.
	got, err := submissions.ListByStudent(ctx, student.ID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "10", got[0].SubmissionID)
	assert.Equal(t, 800, got[0].Rating)

	// A wide window sees both, newest first.
	got, err = submissions.ListByStudent(ctx, student.ID, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10", got[0].SubmissionID)
}

func TestSyncLogAppendAndList(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	syncLog := NewSyncLogRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)

	require.NoError(t, syncLog.Append(ctx, &domain.SyncLogEntry{
		StudentID: student.ID,
		SyncType:  domain.SyncTypeManual,
		Status:    domain.SyncStatusSuccess,
	}))
	require.NoError(t, syncLog.Append(ctx, &domain.SyncLogEntry{
		StudentID:    student.ID,
		SyncType:     domain.SyncTypeOnUpdate,
		Status:       domain.SyncStatusFailure,
		ErrorMessage: "codeforces api: handle not found",
		CreatedAt:    time.Now().UTC().Add(time.Minute),
	}))

	entries, err := syncLog.ListByStudent(ctx, student.ID, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, domain.SyncStatusFailure, entries[0].Status)
	assert.NotEmpty(t, entries[0].ErrorMessage)
	assert.Equal(t, domain.SyncStatusSuccess, entries[1].Status)
}

func TestDeleteStudentCascades(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, zerolog.Nop())
	contests := NewContestRepository(db, zerolog.Nop())
	submissions := NewSubmissionRepository(db, zerolog.Nop())
	syncLog := NewSyncLogRepository(db, zerolog.Nop())
	ctx := context.Background()

	student := seedStudent(t, students)
	now := time.Now().UTC()

	require.NoError(t, contests.ReplaceForStudent(ctx, student.ID,
		[]domain.ContestResult{contestRow(student.ID, "1", now, 45)}))
	require.NoError(t, submissions.ReplaceForStudent(ctx, student.ID,
		[]domain.SubmissionRecord{{StudentID: student.ID, SubmissionID: "10", ProblemName: "A", Verdict: "OK", SubmissionTime: now, Language: "Rust"}}))
	require.NoError(t, syncLog.Append(ctx, &domain.SyncLogEntry{
		StudentID: student.ID,
		SyncType:  domain.SyncTypeManual,
		Status:    domain.SyncStatusSuccess,
	}))

	require.NoError(t, students.Delete(ctx, student.ID))

	contestCount, err := contests.CountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, contestCount)

	subCount, err := submissions.CountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, subCount)

	logCount, err := syncLog.CountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, logCount)
}
