package domain

import (
	"time"
)

type Student struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	CodeforcesHandle string
	CurrentRating    int
	MaxRating        int
	ReminderCount    int
	AutoEmailEnabled bool
	LastUpdated      time.Time
	CreatedAt        time.Time
}

type ContestResult struct {
	ID        string // nanoid, regenerated each sync
	StudentID string
	ContestID string // remote contest id, not reused as primary key
	Name      string
	Date      time.Time
	Rank      int
	// RatingChange is newRating - oldRating as reported by the judge.
	RatingChange int
	NewRating    int
	// The rating endpoint carries no per-contest problem data, so these
	// are always zero after a sync.
	ProblemsSolved int
	TotalProblems  int
}

type SubmissionRecord struct {
	ID             string // nanoid, regenerated each sync
	StudentID      string
	SubmissionID   string // remote submission id
	ProblemName    string
	Rating         int // 0 when the judge has not rated the problem
	Verdict        string
	SubmissionTime time.Time
	Language       string
}

const (
	VerdictOK = "OK"
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailure SyncStatus = "failure"
)

type SyncType string

const (
	SyncTypeManual   SyncType = "manual"
	SyncTypeOnCreate SyncType = "on_create"
	SyncTypeOnUpdate SyncType = "on_update"
)

type SyncLogEntry struct {
	ID           string
	StudentID    string
	SyncType     SyncType
	Status       SyncStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// ProblemStats is derived from accepted submissions inside a day window.
type ProblemStats struct {
	TotalSolved   int
	AverageRating float64
	AveragePerDay float64
	MostDifficult struct {
		Name   string
		Rating int
	}
	RatingBuckets map[int]int // keyed by 100-point floor, unrated excluded
}
