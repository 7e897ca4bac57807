package service

import (
	"context"
	"time"

	"codeforces-tracker/internal/api"
	"codeforces-tracker/internal/domain"
)

// JudgeClient is the read-only Codeforces surface the services need.
// *api.Client implements it; tests inject fakes.
type JudgeClient interface {
	GetUserInfo(ctx context.Context, handle string) (*api.RawUser, error)
	GetRatingHistory(ctx context.Context, handle string) ([]api.RawContest, error)
	GetSubmissions(ctx context.Context, handle string, from, count int) ([]api.RawSubmission, error)
}

type StudentStore interface {
	Create(ctx context.Context, student *domain.Student) error
	Get(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	UpdateRatings(ctx context.Context, id string, currentRating, maxRating int, lastUpdated time.Time) error
	Delete(ctx context.Context, id string) error
}

type ContestStore interface {
	ReplaceForStudent(ctx context.Context, studentID string, contests []domain.ContestResult) error
	ListByStudent(ctx context.Context, studentID string, since time.Time) ([]domain.ContestResult, error)
}

type SubmissionStore interface {
	ReplaceForStudent(ctx context.Context, studentID string, submissions []domain.SubmissionRecord) error
	ListByStudent(ctx context.Context, studentID string, since time.Time) ([]domain.SubmissionRecord, error)
}

type SyncLogStore interface {
	Append(ctx context.Context, entry *domain.SyncLogEntry) error
	ListByStudent(ctx context.Context, studentID string, limit int) ([]domain.SyncLogEntry, error)
}
