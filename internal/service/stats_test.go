package service

import (
	"context"
	"testing"
	"time"

	"codeforces-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveProblemStats(t *testing.T) {
	submissions := []domain.SubmissionRecord{
		{ProblemName: "A", Rating: 800, Verdict: "OK"},
		{ProblemName: "A", Rating: 800, Verdict: "OK"}, // duplicate solve, counted once
		{ProblemName: "B", Rating: 1200, Verdict: "OK"},
		{ProblemName: "C", Rating: 1250, Verdict: "OK"},
		{ProblemName: "D", Rating: 1900, Verdict: "WRONG_ANSWER"}, // not accepted
		{ProblemName: "Gym E", Rating: 0, Verdict: "OK"},          // unrated, solved
	}

	stats := deriveProblemStats(submissions, 10)

	assert.Equal(t, 4, stats.TotalSolved)
	assert.InDelta(t, 0.4, stats.AveragePerDay, 1e-9)
	// Average over rated solves only: (800+1200+1250)/3.
	assert.InDelta(t, 1083.333, stats.AverageRating, 0.001)
	assert.Equal(t, "C", stats.MostDifficult.Name)
	assert.Equal(t, 1250, stats.MostDifficult.Rating)
	assert.Equal(t, map[int]int{800: 1, 1200: 2}, stats.RatingBuckets)
}

func TestDeriveProblemStatsEmpty(t *testing.T) {
	stats := deriveProblemStats(nil, 30)

	assert.Zero(t, stats.TotalSolved)
	assert.Zero(t, stats.AverageRating)
	assert.Zero(t, stats.AveragePerDay)
	assert.Empty(t, stats.MostDifficult.Name)
	assert.Empty(t, stats.RatingBuckets)
}

func TestProblemStatsUnknownStudent(t *testing.T) {
	svc := NewStatsService(newFakeStudents(), newFakeSubmissions(), zerolog.Nop())

	_, err := svc.ProblemStats(context.Background(), "missing", 30)
	require.Error(t, err)
}

func TestProblemStatsForStudent(t *testing.T) {
	students := newFakeStudents(aliceStudent())
	submissions := newFakeSubmissions()
	submissions.rows["student-1"] = []domain.SubmissionRecord{
		{StudentID: "student-1", ProblemName: "A", Rating: 900, Verdict: "OK", SubmissionTime: time.Now()},
	}

	svc := NewStatsService(students, submissions, zerolog.Nop())

	stats, err := svc.ProblemStats(context.Background(), "student-1", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, "A", stats.MostDifficult.Name)
}
