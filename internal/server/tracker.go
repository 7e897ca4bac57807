package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"codeforces-tracker/internal/domain"
	"codeforces-tracker/internal/errs"
	"codeforces-tracker/internal/service"

	"github.com/rs/zerolog"
)

// TrackerServer is the JSON surface consumed by the presentation layer:
// student CRUD, the sync trigger, and the per-window read views.
type TrackerServer struct {
	studentSvc *service.StudentService
	syncSvc    *service.SyncService
	statsSvc   *service.StatsService
	logger     zerolog.Logger
}

func NewTrackerServer(studentSvc *service.StudentService, syncSvc *service.SyncService, statsSvc *service.StatsService, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{
		studentSvc: studentSvc,
		syncSvc:    syncSvc,
		statsSvc:   statsSvc,
		logger:     logger,
	}
}

func (s *TrackerServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/students", s.listStudents)
	mux.HandleFunc("POST /api/students", s.createStudent)
	mux.HandleFunc("GET /api/students/{id}", s.getStudent)
	mux.HandleFunc("PUT /api/students/{id}", s.updateStudent)
	mux.HandleFunc("DELETE /api/students/{id}", s.deleteStudent)
	mux.HandleFunc("POST /api/students/{id}/sync", s.syncStudent)
	mux.HandleFunc("GET /api/students/{id}/contests", s.listContests)
	mux.HandleFunc("GET /api/students/{id}/submissions", s.listSubmissions)
	mux.HandleFunc("GET /api/students/{id}/stats", s.problemStats)
	mux.HandleFunc("GET /api/students/{id}/synclog", s.syncHistory)
}

type studentPayload struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	CodeforcesHandle string `json:"codeforcesHandle"`
	AutoEmailEnabled bool   `json:"autoEmailEnabled"`
}

type studentResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	CodeforcesHandle string `json:"codeforcesHandle"`
	CurrentRating    int    `json:"currentRating"`
	MaxRating        int    `json:"maxRating"`
	ReminderCount    int    `json:"reminderCount"`
	AutoEmailEnabled bool   `json:"autoEmailEnabled"`
	LastUpdated      string `json:"lastUpdated,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

func toStudentResponse(s *domain.Student) studentResponse {
	resp := studentResponse{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		CodeforcesHandle: s.CodeforcesHandle,
		CurrentRating:    s.CurrentRating,
		MaxRating:        s.MaxRating,
		ReminderCount:    s.ReminderCount,
		AutoEmailEnabled: s.AutoEmailEnabled,
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
	}
	if !s.LastUpdated.IsZero() {
		resp.LastUpdated = s.LastUpdated.Format(time.RFC3339)
	}
	return resp
}

func (s *TrackerServer) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.studentSvc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]studentResponse, len(students))
	for i := range students {
		resp[i] = toStudentResponse(&students[i])
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) createStudent(w http.ResponseWriter, r *http.Request) {
	var payload studentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.CodeforcesHandle == "" {
		http.Error(w, "name, email and codeforcesHandle are required", http.StatusBadRequest)
		return
	}

	student := &domain.Student{
		Name:             payload.Name,
		Email:            payload.Email,
		Phone:            payload.Phone,
		CodeforcesHandle: payload.CodeforcesHandle,
		AutoEmailEnabled: payload.AutoEmailEnabled,
	}
	created, err := s.studentSvc.Create(r.Context(), student)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toStudentResponse(created))
}

func (s *TrackerServer) getStudent(w http.ResponseWriter, r *http.Request) {
	student, err := s.studentSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStudentResponse(student))
}

func (s *TrackerServer) updateStudent(w http.ResponseWriter, r *http.Request) {
	var payload studentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	student := &domain.Student{
		ID:               r.PathValue("id"),
		Name:             payload.Name,
		Email:            payload.Email,
		Phone:            payload.Phone,
		CodeforcesHandle: payload.CodeforcesHandle,
		AutoEmailEnabled: payload.AutoEmailEnabled,
	}
	updated, err := s.studentSvc.Update(r.Context(), student)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStudentResponse(updated))
}

func (s *TrackerServer) deleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.studentSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncResponse struct {
	Success     bool            `json:"success"`
	Contests    categoryOutcome `json:"contests"`
	Submissions categoryOutcome `json:"submissions"`
}

type categoryOutcome struct {
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

func toCategoryOutcome(o service.CategoryOutcome) categoryOutcome {
	out := categoryOutcome{Applied: o.Applied, Skipped: o.Skipped}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

func (s *TrackerServer) syncStudent(w http.ResponseWriter, r *http.Request) {
	report, err := s.syncSvc.Sync(r.Context(), r.PathValue("id"), domain.SyncTypeManual)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, syncResponse{
		Success:     true,
		Contests:    toCategoryOutcome(report.Contests),
		Submissions: toCategoryOutcome(report.Submissions),
	})
}

type contestResponse struct {
	ID             string `json:"id"`
	ContestID      string `json:"contestId"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	Rank           int    `json:"rank"`
	RatingChange   int    `json:"ratingChange"`
	NewRating      int    `json:"newRating"`
	ProblemsSolved int    `json:"problemsSolved"`
	TotalProblems  int    `json:"totalProblems"`
}

func (s *TrackerServer) listContests(w http.ResponseWriter, r *http.Request) {
	contests, err := s.studentSvc.Contests(r.Context(), r.PathValue("id"), queryDays(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]contestResponse, len(contests))
	for i, c := range contests {
		resp[i] = contestResponse{
			ID:             c.ID,
			ContestID:      c.ContestID,
			Name:           c.Name,
			Date:           c.Date.Format(time.RFC3339),
			Rank:           c.Rank,
			RatingChange:   c.RatingChange,
			NewRating:      c.NewRating,
			ProblemsSolved: c.ProblemsSolved,
			TotalProblems:  c.TotalProblems,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type submissionResponse struct {
	ID             string `json:"id"`
	SubmissionID   string `json:"submissionId"`
	ProblemName    string `json:"problemName"`
	Rating         int    `json:"rating"`
	Verdict        string `json:"verdict"`
	SubmissionTime string `json:"submissionTime"`
	Language       string `json:"language"`
}

func (s *TrackerServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := s.studentSvc.Submissions(r.Context(), r.PathValue("id"), queryDays(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]submissionResponse, len(submissions))
	for i, sub := range submissions {
		resp[i] = submissionResponse{
			ID:             sub.ID,
			SubmissionID:   sub.SubmissionID,
			ProblemName:    sub.ProblemName,
			Rating:         sub.Rating,
			Verdict:        sub.Verdict,
			SubmissionTime: sub.SubmissionTime.Format(time.RFC3339),
			Language:       sub.Language,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type problemStatsResponse struct {
	TotalSolved   int            `json:"totalSolved"`
	AverageRating float64        `json:"averageRating"`
	AveragePerDay float64        `json:"averagePerDay"`
	MostDifficult mostDifficult  `json:"mostDifficult"`
	RatingBuckets map[string]int `json:"ratingBuckets"`
}

type mostDifficult struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

func (s *TrackerServer) problemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsSvc.ProblemStats(r.Context(), r.PathValue("id"), queryDays(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	buckets := make(map[string]int, len(stats.RatingBuckets))
	for rating, count := range stats.RatingBuckets {
		buckets[strconv.Itoa(rating)] = count
	}
	s.writeJSON(w, http.StatusOK, problemStatsResponse{
		TotalSolved:   stats.TotalSolved,
		AverageRating: stats.AverageRating,
		AveragePerDay: stats.AveragePerDay,
		MostDifficult: mostDifficult{
			Name:   stats.MostDifficult.Name,
			Rating: stats.MostDifficult.Rating,
		},
		RatingBuckets: buckets,
	})
}

type syncLogResponse struct {
	ID           string `json:"id"`
	SyncType     string `json:"syncType"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Timestamp    string `json:"timestamp"`
}

func (s *TrackerServer) syncHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.syncSvc.SyncHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]syncLogResponse, len(entries))
	for i, e := range entries {
		resp[i] = syncLogResponse{
			ID:           e.ID,
			SyncType:     string(e.SyncType),
			Status:       string(e.Status),
			ErrorMessage: e.ErrorMessage,
			Timestamp:    e.CreatedAt.Format(time.RFC3339),
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func queryDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		return 0
	}
	return days
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *TrackerServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrStudentNotFound):
		status = http.StatusNotFound
	case errs.IsJudgeError(err):
		status = http.StatusBadGateway
	}

	s.logger.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
