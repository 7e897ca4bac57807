// Package convert maps raw Codeforces API records into domain entities.
// All functions are pure; a record missing a required field is skipped,
// never the whole batch.
package convert

import (
	"strconv"
	"time"

	"codeforces-tracker/internal/api"
	"codeforces-tracker/internal/domain"
	"codeforces-tracker/internal/errs"
)

func epochTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// ProfileRatings resolves the rating pair from a raw user record.
// Unrated users carry no rating fields; both default to zero, and
// maxRating falls back to the current rating before the zero default.
func ProfileRatings(u api.RawUser) (current, max int) {
	if u.Rating != nil {
		current = *u.Rating
	}
	switch {
	case u.MaxRating != nil:
		max = *u.MaxRating
	case u.Rating != nil:
		max = *u.Rating
	}
	return current, max
}

// ContestResult maps one rating-history record. The remote contest id is
// required; a record without one fails closed.
func ContestResult(studentID string, raw api.RawContest) (domain.ContestResult, error) {
	if raw.ContestID == 0 {
		return domain.ContestResult{}, errs.ErrRecordIncomplete
	}
	return domain.ContestResult{
		StudentID:    studentID,
		ContestID:    strconv.Itoa(raw.ContestID),
		Name:         raw.ContestName,
		Date:         epochTime(raw.RatingUpdateTimeSeconds),
		Rank:         raw.Rank,
		RatingChange: raw.NewRating - raw.OldRating,
		NewRating:    raw.NewRating,
		// user.rating carries no problem counts; always zero.
		ProblemsSolved: 0,
		TotalProblems:  0,
	}, nil
}

// ContestResults maps a batch, dropping incomplete records. Returns the
// mapped set and the number of records skipped.
func ContestResults(studentID string, raws []api.RawContest) ([]domain.ContestResult, int) {
	results := make([]domain.ContestResult, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		result, err := ContestResult(studentID, raw)
		if err != nil {
			skipped++
			continue
		}
		results = append(results, result)
	}
	return results, skipped
}

// SubmissionRecord maps one user.status record. The remote submission id
// is required; the problem rating defaults to zero when the judge has
// not rated the problem.
func SubmissionRecord(studentID string, raw api.RawSubmission) (domain.SubmissionRecord, error) {
	if raw.ID == 0 {
		return domain.SubmissionRecord{}, errs.ErrRecordIncomplete
	}
	rating := 0
	if raw.Problem.Rating != nil {
		rating = *raw.Problem.Rating
	}
	return domain.SubmissionRecord{
		StudentID:      studentID,
		SubmissionID:   strconv.FormatInt(raw.ID, 10),
		ProblemName:    raw.Problem.Name,
		Rating:         rating,
		Verdict:        raw.Verdict,
		SubmissionTime: epochTime(raw.CreationTimeSeconds),
		Language:       raw.ProgrammingLanguage,
	}, nil
}

// SubmissionRecords maps a batch, dropping incomplete records.
func SubmissionRecords(studentID string, raws []api.RawSubmission) ([]domain.SubmissionRecord, int) {
	records := make([]domain.SubmissionRecord, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		record, err := SubmissionRecord(studentID, raw)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped
}
