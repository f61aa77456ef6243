package grading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/YatinKare/DesignDual/internal/model"
)

// Config bounds the two expensive stages of a grading run.
type Config struct {
	TranscriptionTimeout time.Duration
	PipelineTimeout      time.Duration
}

// DefaultConfig returns the stock stage timeouts.
func DefaultConfig() Config {
	return Config{
		TranscriptionTimeout: 120 * time.Second,
		PipelineTimeout:      300 * time.Second,
	}
}

// SubmissionStore is the submission state the orchestrator reads and mutates.
type SubmissionStore interface {
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus) error
	SaveTranscripts(ctx context.Context, id string, transcripts map[model.PhaseName][]model.TranscriptSnippet) error
}

// EventAppender persists one progress event. Implementations also fan events
// out to live listeners.
type EventAppender interface {
	Append(ctx context.Context, event *model.GradingEvent) error
}

// ResultStore persists the final result contract.
type ResultStore interface {
	Save(ctx context.Context, result *model.SubmissionResult) error
}

// ProblemStore resolves the problem a submission was graded against.
type ProblemStore interface {
	GetProblem(ctx context.Context, id string) (*model.Problem, error)
}

// Orchestrator drives one submission through the full grading state machine:
// transcription, parallel phase evaluation, synthesis, and persistence. One
// run owns its submission exclusively; runs for different submissions share
// nothing.
type Orchestrator struct {
	submissions SubmissionStore
	events      EventAppender
	results     ResultStore
	problems    ProblemStore
	transcriber Transcriber
	runner      *PhaseRunner
	chain       *SynthesisChain
	cfg         Config
}

func NewOrchestrator(
	submissions SubmissionStore,
	events EventAppender,
	results ResultStore,
	problems ProblemStore,
	transcriber Transcriber,
	evaluator PhaseEvaluator,
	planner Planner,
	cfg Config,
) *Orchestrator {
	if cfg.TranscriptionTimeout <= 0 {
		cfg.TranscriptionTimeout = DefaultConfig().TranscriptionTimeout
	}
	if cfg.PipelineTimeout <= 0 {
		cfg.PipelineTimeout = DefaultConfig().PipelineTimeout
	}
	return &Orchestrator{
		submissions: submissions,
		events:      events,
		results:     results,
		problems:    problems,
		transcriber: transcriber,
		runner:      NewPhaseRunner(evaluator),
		chain:       NewSynthesisChain(planner),
		cfg:         cfg,
	}
}

// Progress checkpoints reported over the event stream.
const (
	progressQueuePickup  = 0.0
	progressTranscribing = 0.1
	progressTranscribed  = 0.2
	progressPhaseBase    = 0.3
	progressPhaseStep    = 0.1
	progressSynthesizing = 0.85
	progressComplete     = 1.0
)

var phaseMessages = map[model.PhaseName]string{
	model.PhaseClarify:  "The Clarification Sage studies how you scoped the problem...",
	model.PhaseEstimate: "The Estimation Oracle checks your numbers...",
	model.PhaseDesign:   "The Architecture Archmage examines your blueprint...",
	model.PhaseExplain:  "The Wisdom Keeper weighs your tradeoffs...",
}

// Run grades one submission end to end. It returns an error only for
// operational failures; a grading failure is recorded on the submission
// itself and returns nil so the job is not retried.
func (o *Orchestrator) Run(ctx context.Context, submissionID string) (err error) {
	sub, err := o.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", submissionID, err)
	}
	if sub.Status.Terminal() {
		log.Printf("Submission %s already %s, skipping grading run", sub.ID, sub.Status)
		return nil
	}

	problem, err := o.problems.GetProblem(ctx, sub.ProblemID)
	if err != nil {
		o.fail(ctx, sub.ID, fmt.Sprintf("unknown problem %s: %v", sub.ProblemID, err))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while grading submission %s: %v", sub.ID, r)
			o.fail(ctx, sub.ID, fmt.Sprintf("internal error: %v", r))
			err = nil
		}
	}()

	o.setStatus(ctx, sub.ID, model.SubmissionProcessing)
	o.emit(ctx, sub.ID, model.SubmissionProcessing, "The grading ritual begins.", nil, progressQueuePickup)

	transcripts, terr := o.transcribeAll(ctx, sub)
	if terr != nil {
		o.fail(ctx, sub.ID, terr.Error())
		return nil
	}
	o.emit(ctx, sub.ID, model.SubmissionTranscribing, "Your words have been transcribed.", nil, progressTranscribed)

	o.setStatus(ctx, sub.ID, model.SubmissionGrading)

	pipeCtx, cancel := context.WithTimeout(ctx, o.cfg.PipelineTimeout)
	defer cancel()

	inputs := make(map[model.PhaseName]PhaseInput, len(model.PhaseOrder))
	for i, phase := range model.PhaseOrder {
		phase := phase
		artifact := sub.Phases[phase]
		inputs[phase] = PhaseInput{
			Phase:        phase,
			SnapshotPath: artifact.CanvasPath,
			Transcripts:  transcripts[phase],
		}
		progress := progressPhaseBase + float64(i)*progressPhaseStep
		o.emit(ctx, sub.ID, model.SubmissionGrading, phaseMessages[phase], &phase, progress)
	}

	results := o.runner.Run(pipeCtx, problem, inputs)

	outputs := make(map[model.PhaseName]*model.PhaseOutput, len(model.PhaseOrder))
	var failed []string
	for _, phase := range model.PhaseOrder {
		res := results[phase]
		if res.Err != nil {
			log.Printf("Submission %s phase %s failed: %v", sub.ID, phase, res.Err)
			failed = append(failed, string(phase))
			continue
		}
		outputs[phase] = res.Output
	}
	if len(failed) > 0 {
		o.fail(ctx, sub.ID, fmt.Sprintf("evaluation failed for phases: %s", strings.Join(failed, ", ")))
		return nil
	}

	o.emit(ctx, sub.ID, model.SubmissionGrading, "The council gathers to deliberate your verdict...", nil, progressSynthesizing)

	result, serr := o.chain.Run(pipeCtx, sub, problem, outputs, time.Now().UTC())
	if serr != nil {
		o.fail(ctx, sub.ID, fmt.Sprintf("synthesis failed: %v", serr))
		return nil
	}

	// Persistence uses the parent context: a pipeline deadline hit during
	// synthesis must not also discard a finished result.
	if perr := o.results.Save(ctx, result); perr != nil {
		o.fail(ctx, sub.ID, fmt.Sprintf("failed to persist result: %v", perr))
		return nil
	}

	o.setStatus(ctx, sub.ID, model.SubmissionComplete)
	o.emit(ctx, sub.ID, model.SubmissionComplete, "The verdict is sealed. Your results await.", nil, progressComplete)
	return nil
}

// transcribeAll converts every phase's audio concurrently under the
// transcription deadline. A single bad file degrades to an empty transcript;
// hitting the stage deadline fails the run.
func (o *Orchestrator) transcribeAll(ctx context.Context, sub *model.Submission) (map[model.PhaseName][]model.TranscriptSnippet, error) {
	o.setStatus(ctx, sub.ID, model.SubmissionTranscribing)
	o.emit(ctx, sub.ID, model.SubmissionTranscribing, "Listening closely to your spoken reasoning...", nil, progressTranscribing)

	tctx, cancel := context.WithTimeout(ctx, o.cfg.TranscriptionTimeout)
	defer cancel()

	// Seed every phase before any goroutine starts so the workers only ever
	// overwrite their own entry under mu.
	transcripts := make(map[model.PhaseName][]model.TranscriptSnippet, len(model.PhaseOrder))
	for _, phase := range model.PhaseOrder {
		transcripts[phase] = nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var deadlineHit bool

	for _, phase := range model.PhaseOrder {
		artifact, ok := sub.Phases[phase]
		if !ok || artifact.AudioPath == "" {
			continue
		}

		wg.Add(1)
		go func(phase model.PhaseName, audioPath string) {
			defer wg.Done()
			snippets, err := o.transcriber.Transcribe(tctx, audioPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || tctx.Err() != nil {
					deadlineHit = true
					return
				}
				log.Printf("Submission %s: transcription of %s audio failed, continuing without it: %v", sub.ID, phase, err)
				return
			}
			transcripts[phase] = snippets
		}(phase, artifact.AudioPath)
	}
	wg.Wait()

	if deadlineHit {
		// tctx dies with the run context too; only blame the stage deadline
		// when the parent is still live.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("transcription aborted: %v", err)
		}
		return nil, fmt.Errorf("transcription exceeded the %s deadline", o.cfg.TranscriptionTimeout)
	}

	if err := o.submissions.SaveTranscripts(ctx, sub.ID, transcripts); err != nil {
		return nil, fmt.Errorf("failed to store transcripts: %v", err)
	}
	return transcripts, nil
}

// fail moves the submission to its terminal failure state and records a
// single failure event. Event text is capped so arbitrary upstream errors
// cannot bloat the stream.
func (o *Orchestrator) fail(ctx context.Context, submissionID, msg string) {
	msg = truncate(msg, 200)
	o.setStatus(ctx, submissionID, model.SubmissionFailed)
	o.emit(ctx, submissionID, model.SubmissionFailed, "Grading failed: "+msg, nil, progressComplete)
}

func (o *Orchestrator) setStatus(ctx context.Context, submissionID string, status model.SubmissionStatus) {
	if err := o.submissions.UpdateStatus(ctx, submissionID, status); err != nil {
		log.Printf("Failed to update submission %s status to %s: %v", submissionID, status, err)
	}
}

// emit records a progress event. Append failures are logged and swallowed;
// progress reporting never takes a grading run down.
func (o *Orchestrator) emit(ctx context.Context, submissionID string, status model.SubmissionStatus, msg string, phase *model.PhaseName, progress float64) {
	p := progress
	event := &model.GradingEvent{
		SubmissionID: submissionID,
		Status:       status,
		Message:      msg,
		Phase:        phase,
		Progress:     &p,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.events.Append(ctx, event); err != nil {
		log.Printf("Failed to append grading event for submission %s: %v", submissionID, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
