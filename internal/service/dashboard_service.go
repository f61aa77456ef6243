package service

import (
	"context"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
)

const defaultHistoryLimit = 20

// DashboardService aggregates scores across graded submissions.
type DashboardService struct {
	results *repository.ResultRepository
}

func NewDashboardService(results *repository.ResultRepository) *DashboardService {
	return &DashboardService{results: results}
}

// History returns the most recent graded submissions, newest first.
func (s *DashboardService) History(ctx context.Context, limit int) ([]model.ScoreHistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	return s.results.History(ctx, limit)
}

// Summary returns aggregate score statistics.
func (s *DashboardService) Summary(ctx context.Context) (*model.ScoreSummary, error) {
	return s.results.Summary(ctx)
}
