package service

import (
	"context"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
)

// ProblemService exposes the practice problem catalog.
type ProblemService struct {
	problems *repository.ProblemRepository
}

func NewProblemService(problems *repository.ProblemRepository) *ProblemService {
	return &ProblemService{problems: problems}
}

// List returns the catalog summaries.
func (s *ProblemService) List(ctx context.Context) ([]model.ProblemSummary, error) {
	return s.problems.List(ctx)
}

// Get returns one problem with its rubric and phase timings.
func (s *ProblemService) Get(ctx context.Context, id string) (*model.Problem, error) {
	return s.problems.GetProblem(ctx, id)
}
