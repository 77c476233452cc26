package biz

import (
	"time"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/biz/usecase"
)

// Repositories are the storage and transport dependencies of the usecases
type Repositories struct {
	Sessions repo.SessionRepo
	Entries  repo.EntryRepo
	Users    repo.UserRepo
	Mirror   repo.MirrorRepo // nil when no spreadsheet is configured
}

// Usecases contains all usecases
type Usecases struct {
	Survey *usecase.SurveyUsecase
	Stats  *usecase.StatsUsecase
	Roster *usecase.RosterUsecase
}

// NewUsecases wires the usecases over the given repositories
func NewUsecases(catalog *domain.Catalog, repos Repositories, mirror usecase.MirrorConfig, loc *time.Location) *Usecases {
	sink := usecase.NewEntrySink(repos.Entries, repos.Mirror, mirror)
	return &Usecases{
		Survey: usecase.NewSurveyUsecase(catalog, repos.Sessions, sink, usecase.NewAlertEvaluator(catalog.Risk), loc),
		Stats:  usecase.NewStatsUsecase(catalog, repos.Entries, loc),
		Roster: usecase.NewRosterUsecase(repos.Users),
	}
}
