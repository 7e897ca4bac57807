package service

import (
	"context"
	"time"

	"codeforces-tracker/internal/constants"
	"codeforces-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// StatsService derives problem-solving statistics from the cached
// submission set. Only accepted submissions count, one per distinct
// problem; unrated problems are excluded from the average and buckets.
type StatsService struct {
	students    StudentStore
	submissions SubmissionStore
	logger      zerolog.Logger
}

func NewStatsService(students StudentStore, submissions SubmissionStore, logger zerolog.Logger) *StatsService {
	return &StatsService{
		students:    students,
		submissions: submissions,
		logger:      logger,
	}
}

func (s *StatsService) ProblemStats(ctx context.Context, studentID string, days int) (*domain.ProblemStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = constants.DefaultSubmissionWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	submissions, err := s.submissions.ListByStudent(ctx, studentID, since)
	if err != nil {
		return nil, err
	}

	return deriveProblemStats(submissions, days), nil
}

func deriveProblemStats(submissions []domain.SubmissionRecord, days int) *domain.ProblemStats {
	stats := &domain.ProblemStats{
		RatingBuckets: map[int]int{},
	}

	solved := map[string]int{} // problem name -> rating
	for _, sub := range submissions {
		if sub.Verdict != domain.VerdictOK {
			continue
		}
		if _, ok := solved[sub.ProblemName]; ok {
			continue
		}
		solved[sub.ProblemName] = sub.Rating
	}

	stats.TotalSolved = len(solved)
	if days > 0 {
		stats.AveragePerDay = float64(stats.TotalSolved) / float64(days)
	}

	ratedCount := 0
	ratingSum := 0
	for name, rating := range solved {
		if rating > stats.MostDifficult.Rating {
			stats.MostDifficult.Name = name
			stats.MostDifficult.Rating = rating
		}
		if rating <= 0 {
			continue
		}
		ratedCount++
		ratingSum += rating
		stats.RatingBuckets[rating/100*100]++
	}
	if ratedCount > 0 {
		stats.AverageRating = float64(ratingSum) / float64(ratedCount)
	}

	return stats
}
