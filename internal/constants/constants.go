package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// Codeforces user.status page bounds. The client fetches one page of
	// the most recent submissions and never paginates further.
	SubmissionFetchFrom  = 1
	SubmissionFetchCount = 1000
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultContestWindowDays    = 365
	DefaultSubmissionWindowDays = 30
	SyncLogListLimit            = 50
)
