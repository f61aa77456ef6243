package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/upload"
)

const TaskTypeGrading = "grading:process"

// SubmissionService handles submission intake and read access.
type SubmissionService struct {
	store       *repository.Store
	uploads     *upload.Store
	asynqClient *asynq.Client
}

func NewSubmissionService(store *repository.Store, uploads *upload.Store, asynqClient *asynq.Client) *SubmissionService {
	return &SubmissionService{
		store:       store,
		uploads:     uploads,
		asynqClient: asynqClient,
	}
}

// CreateSubmissionInput carries the parsed multipart submission form.
type CreateSubmissionInput struct {
	ProblemID  string
	PhaseTimes map[model.PhaseName]int
	Canvas     map[model.PhaseName]*multipart.FileHeader
	Audio      map[model.PhaseName]*multipart.FileHeader
}

// Create stores the submission artifacts, persists the submission as queued,
// and enqueues its grading run.
func (s *SubmissionService) Create(ctx context.Context, input *CreateSubmissionInput) (*model.CreateSubmissionResponse, error) {
	if _, err := s.store.Problems.GetProblem(ctx, input.ProblemID); err != nil {
		return nil, fmt.Errorf("problem %s not found", input.ProblemID)
	}
	for _, phase := range model.PhaseOrder {
		if input.Canvas[phase] == nil {
			return nil, fmt.Errorf("missing canvas snapshot for phase %s", phase)
		}
	}

	submissionID := uuid.New().String()
	now := time.Now().UTC()

	phases := make(map[model.PhaseName]model.PhaseArtifact, len(model.PhaseOrder))
	for _, phase := range model.PhaseOrder {
		canvasPath, err := s.uploads.SaveCanvas(submissionID, phase, input.Canvas[phase])
		if err != nil {
			s.uploads.Remove(submissionID)
			return nil, err
		}
		artifact := model.PhaseArtifact{CanvasPath: canvasPath}

		if audio := input.Audio[phase]; audio != nil {
			audioPath, err := s.uploads.SaveAudio(submissionID, phase, audio)
			if err != nil {
				s.uploads.Remove(submissionID)
				return nil, err
			}
			artifact.AudioPath = audioPath
		}
		phases[phase] = artifact
	}

	sub := &model.Submission{
		ID:         submissionID,
		ProblemID:  input.ProblemID,
		Status:     model.SubmissionQueued,
		PhaseTimes: input.PhaseTimes,
		Phases:     phases,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Submissions.Create(ctx, sub); err != nil {
		s.uploads.Remove(submissionID)
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	task, err := newGradingTask(submissionID)
	if err != nil {
		return nil, err
	}
	// A failed run records its own terminal state; retrying against it
	// would be rejected by the terminal-status guard anyway.
	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("grading"),
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue grading task: %w", err)
	}

	return &model.CreateSubmissionResponse{
		SubmissionID: submissionID,
		Status:       model.SubmissionQueued,
		CreatedAt:    now,
	}, nil
}

func newGradingTask(submissionID string) (*asynq.Task, error) {
	payload, err := json.Marshal(model.GradingJobPayload{SubmissionID: submissionID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TaskTypeGrading, payload), nil
}

// GetStatus returns the current lifecycle status of a submission.
func (s *SubmissionService) GetStatus(ctx context.Context, submissionID string) (*model.SubmissionStatusResponse, error) {
	sub, err := s.store.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionStatusResponse{
		SubmissionID: sub.ID,
		ProblemID:    sub.ProblemID,
		Status:       sub.Status,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
		CompletedAt:  sub.CompletedAt,
	}, nil
}

// GetResult returns the stored grading result for a completed submission.
func (s *SubmissionService) GetResult(ctx context.Context, submissionID string) (*model.SubmissionResult, error) {
	return s.store.Results.Get(ctx, submissionID)
}

// GetEvents returns the submission's full progress event stream in order.
func (s *SubmissionService) GetEvents(ctx context.Context, submissionID string) (*model.SubmissionEventsResponse, error) {
	if _, err := s.store.Submissions.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	events, err := s.store.Events.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return &model.SubmissionEventsResponse{
		SubmissionID: submissionID,
		Events:       events,
	}, nil
}
