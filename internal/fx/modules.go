package fx

import (
	"codeforces-tracker/internal/api"
	"codeforces-tracker/internal/config"
	"codeforces-tracker/internal/database"
	"codeforces-tracker/internal/logger"
	"codeforces-tracker/internal/repository"
	"codeforces-tracker/internal/server"
	"codeforces-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideSyncService(
	judge *api.Client,
	students *repository.StudentRepository,
	contests *repository.ContestRepository,
	submissions *repository.SubmissionRepository,
	syncLog *repository.SyncLogRepository,
	log zerolog.Logger,
) *service.SyncService {
	return service.NewSyncService(judge, students, contests, submissions, syncLog, log)
}

func ProvideStudentService(
	students *repository.StudentRepository,
	contests *repository.ContestRepository,
	submissions *repository.SubmissionRepository,
	sync *service.SyncService,
	log zerolog.Logger,
) *service.StudentService {
	return service.NewStudentService(students, contests, submissions, sync, log)
}

func ProvideStatsService(
	students *repository.StudentRepository,
	submissions *repository.SubmissionRepository,
	log zerolog.Logger,
) *service.StatsService {
	return service.NewStatsService(students, submissions, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewStudentRepository),
	fx.Provide(repository.NewContestRepository),
	fx.Provide(repository.NewSubmissionRepository),
	fx.Provide(repository.NewSyncLogRepository),
	// api client
	fx.Provide(api.NewClient),
	// svc
	fx.Provide(ProvideSyncService),
	fx.Provide(ProvideStudentService),
	fx.Provide(ProvideStatsService),
	// server
	fx.Provide(server.NewTrackerServer),
)
