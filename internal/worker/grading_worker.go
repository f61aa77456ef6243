package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/YatinKare/DesignDual/internal/grading"
	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/service"
	"github.com/YatinKare/DesignDual/internal/websocket"
)

// GradingWorker processes grading jobs. Each run checks a dedicated database
// connection out of the pool so a slow grading run never starves request
// handlers of connections.
type GradingWorker struct {
	store       *repository.Store
	hub         *websocket.Hub
	transcriber grading.Transcriber
	evaluator   grading.PhaseEvaluator
	planner     grading.Planner
	cfg         grading.Config
}

// NewGradingWorker creates a new grading worker
func NewGradingWorker(
	store *repository.Store,
	hub *websocket.Hub,
	transcriber grading.Transcriber,
	evaluator grading.PhaseEvaluator,
	planner grading.Planner,
	cfg grading.Config,
) *GradingWorker {
	return &GradingWorker{
		store:       store,
		hub:         hub,
		transcriber: transcriber,
		evaluator:   evaluator,
		planner:     planner,
		cfg:         cfg,
	}
}

// ProcessTask handles one grading task.
func (w *GradingWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.GradingJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	log.Printf("Starting grading run for submission %s", payload.SubmissionID)

	run, err := w.store.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire run connection: %w", err)
	}
	defer run.Release()

	events := service.NewEventService(run.Events, w.hub)
	orchestrator := grading.NewOrchestrator(
		run.Submissions, events, run.Results, run.Problems,
		w.transcriber, w.evaluator, w.planner, w.cfg,
	)

	if err := orchestrator.Run(ctx, payload.SubmissionID); err != nil {
		return err
	}

	w.announceOutcome(ctx, run, payload.SubmissionID)
	return nil
}

// announceOutcome pushes the terminal frame to WebSocket subscribers: the
// full result on success, an error frame on failure.
func (w *GradingWorker) announceOutcome(ctx context.Context, run *repository.RunStore, submissionID string) {
	sub, err := run.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		log.Printf("Failed to load submission %s after grading: %v", submissionID, err)
		return
	}

	switch sub.Status {
	case model.SubmissionComplete:
		result, err := run.Results.Get(ctx, submissionID)
		if err != nil {
			log.Printf("Failed to load result for submission %s: %v", submissionID, err)
			return
		}
		w.hub.BroadcastComplete(submissionID, result)
	case model.SubmissionFailed:
		w.hub.BroadcastError(submissionID, "GRADING_FAILED", "Grading failed. Check the event stream for details.")
	}
}
