package service

import (
	"context"
	"testing"

	"codeforces-tracker/internal/domain"
	"codeforces-tracker/internal/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudentFixture(students ...*domain.Student) (*syncFixture, *StudentService) {
	f := newSyncFixture(students...)
	svc := NewStudentService(f.students, f.contests, f.submissions, f.svc, zerolog.Nop())
	return f, svc
}

func TestCreateStudentTriggersSync(t *testing.T) {
	f, svc := newStudentFixture()

	created, err := svc.Create(context.Background(), &domain.Student{
		Name:             "Alice",
		Email:            "alice@example.com",
		CodeforcesHandle: "alice_codes",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// The on-create sync already ran and filled in the profile ratings.
	assert.Equal(t, int32(1), f.judge.userCalls.Load())
	assert.Equal(t, 1600, created.CurrentRating)
	assert.Equal(t, 1700, created.MaxRating)

	require.Len(t, f.syncLog.entries, 1)
	assert.Equal(t, domain.SyncTypeOnCreate, f.syncLog.entries[0].SyncType)
}

func TestCreateStudentSyncFailureDoesNotFailCreate(t *testing.T) {
	f, svc := newStudentFixture()
	f.judge.userErr = &errs.NetworkError{Err: assert.AnError}

	created, err := svc.Create(context.Background(), &domain.Student{
		Name:             "Alice",
		Email:            "alice@example.com",
		CodeforcesHandle: "alice_codes",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Zero(t, created.CurrentRating)
}

func TestUpdateStudentResyncsAgainstNewHandle(t *testing.T) {
	f, svc := newStudentFixture(aliceStudent())

	updated, err := svc.Update(context.Background(), &domain.Student{
		ID:               "student-1",
		Name:             "Alice",
		Email:            "alice@example.com",
		CodeforcesHandle: "alice_renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", updated.CodeforcesHandle)

	require.Len(t, f.syncLog.entries, 1)
	assert.Equal(t, domain.SyncTypeOnUpdate, f.syncLog.entries[0].SyncType)
}

func TestUpdateUnknownStudent(t *testing.T) {
	_, svc := newStudentFixture()

	_, err := svc.Update(context.Background(), &domain.Student{ID: "missing"})
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)
}

func TestDeleteStudent(t *testing.T) {
	_, svc := newStudentFixture(aliceStudent())

	require.NoError(t, svc.Delete(context.Background(), "student-1"))

	_, err := svc.Get(context.Background(), "student-1")
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)
}

func TestContestsUnknownStudent(t *testing.T) {
	_, svc := newStudentFixture()

	_, err := svc.Contests(context.Background(), "missing", 90)
	assert.ErrorIs(t, err, errs.ErrStudentNotFound)
}
