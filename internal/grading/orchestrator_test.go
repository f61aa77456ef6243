package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YatinKare/DesignDual/internal/model"
)

type fakeStores struct {
	mu          sync.Mutex
	submissions map[string]*model.Submission
	events      []model.GradingEvent
	results     map[string]*model.SubmissionResult
	problems    map[string]*model.Problem

	saveResultErr     error
	updateStatusErr   error
	saveTranscriptErr error
}

func newFakeStores(sub *model.Submission, problem *model.Problem) *fakeStores {
	return &fakeStores{
		submissions: map[string]*model.Submission{sub.ID: sub},
		results:     map[string]*model.SubmissionResult{},
		problems:    map[string]*model.Problem{problem.ID: problem},
	}
}

func (f *fakeStores) GetSubmission(_ context.Context, id string) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s not found", id)
	}
	clone := *sub
	return &clone, nil
}

func (f *fakeStores) UpdateStatus(_ context.Context, id string, status model.SubmissionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	f.submissions[id].Status = status
	return nil
}

func (f *fakeStores) SaveTranscripts(_ context.Context, id string, transcripts map[model.PhaseName][]model.TranscriptSnippet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveTranscriptErr != nil {
		return f.saveTranscriptErr
	}
	sub := f.submissions[id]
	for phase, snippets := range transcripts {
		artifact := sub.Phases[phase]
		artifact.Transcript = snippets
		sub.Phases[phase] = artifact
	}
	return nil
}

func (f *fakeStores) Append(_ context.Context, event *model.GradingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeStores) Save(_ context.Context, result *model.SubmissionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveResultErr != nil {
		return f.saveResultErr
	}
	f.results[result.SubmissionID] = result
	return nil
}

func (f *fakeStores) GetProblem(_ context.Context, id string) (*model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	problem, ok := f.problems[id]
	if !ok {
		return nil, fmt.Errorf("problem %s not found", id)
	}
	return problem, nil
}

func (f *fakeStores) status(id string) model.SubmissionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[id].Status
}

func queuedSubmission(withAudio bool) *model.Submission {
	sub := testSubmission()
	sub.Status = model.SubmissionQueued
	for _, phase := range model.PhaseOrder {
		artifact := model.PhaseArtifact{CanvasPath: fmt.Sprintf("uploads/sub-1/canvas_%s.png", phase)}
		if withAudio {
			artifact.AudioPath = fmt.Sprintf("uploads/sub-1/audio_%s.webm", phase)
		}
		sub.Phases[phase] = artifact
	}
	return sub
}

func newTestOrchestrator(stores *fakeStores, transcriber Transcriber, evaluator PhaseEvaluator, planner Planner, cfg Config) *Orchestrator {
	return NewOrchestrator(stores, stores, stores, stores, transcriber, evaluator, planner, cfg)
}

// assertStatusDiscipline checks the event stream invariants: distinct
// statuses appear as a subsequence of the lifecycle order, and a failure
// event is only ever last.
func assertStatusDiscipline(t *testing.T, events []model.GradingEvent) {
	t.Helper()
	orderIdx := map[model.SubmissionStatus]int{}
	for i, s := range model.StatusOrder {
		orderIdx[s] = i
	}

	last := -1
	for i, ev := range events {
		if ev.Status == model.SubmissionFailed {
			assert.Equal(t, len(events)-1, i, "failure event must be last")
			continue
		}
		idx, ok := orderIdx[ev.Status]
		require.True(t, ok, "unknown event status %q", ev.Status)
		assert.GreaterOrEqual(t, idx, last, "status %q regressed at event %d", ev.Status, i)
		if idx > last {
			last = idx
		}
	}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	stores := newFakeStores(queuedSubmission(true), testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionComplete, stores.status("sub-1"))

	result := stores.results["sub-1"]
	require.NotNil(t, result)
	require.NoError(t, ValidateResult(result))
	assert.Equal(t, model.VerdictHire, result.Verdict)

	require.NotEmpty(t, stores.events)
	assertStatusDiscipline(t, stores.events)

	final := stores.events[len(stores.events)-1]
	assert.Equal(t, model.SubmissionComplete, final.Status)
	require.NotNil(t, final.Progress)
	assert.Equal(t, 1.0, *final.Progress)

	// One progress event per phase, in canonical order.
	var phases []model.PhaseName
	for _, ev := range stores.events {
		if ev.Phase != nil {
			phases = append(phases, *ev.Phase)
		}
	}
	assert.Equal(t, model.PhaseOrder, phases)

	// Transcripts were persisted before evaluation.
	assert.NotEmpty(t, stores.submissions["sub-1"].Phases[model.PhaseClarify].Transcript)
}

func TestOrchestrator_NoAudioStillGrades(t *testing.T) {
	stores := newFakeStores(queuedSubmission(false), testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionComplete, stores.status("sub-1"))
	require.NotNil(t, stores.results["sub-1"])
}

func TestOrchestrator_PhaseFailureNamesPhase(t *testing.T) {
	stores := newFakeStores(queuedSubmission(false), testProblem())
	evaluator := funcEvaluator(func(_ context.Context, _ *model.Problem, input PhaseInput) (*model.PhaseOutput, error) {
		if input.Phase == model.PhaseDesign {
			return nil, errors.New("model overloaded")
		}
		return validOutput(input.Phase, 8.0), nil
	})
	o := newTestOrchestrator(stores, MockTranscriber{}, evaluator, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionFailed, stores.status("sub-1"))
	assert.Empty(t, stores.results)

	final := stores.events[len(stores.events)-1]
	assert.Equal(t, model.SubmissionFailed, final.Status)
	assert.Contains(t, final.Message, "Grading failed:")
	assert.Contains(t, final.Message, "design")
	assertStatusDiscipline(t, stores.events)
}

func TestOrchestrator_PersistenceFailure(t *testing.T) {
	stores := newFakeStores(queuedSubmission(false), testProblem())
	stores.saveResultErr = errors.New("connection refused")
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionFailed, stores.status("sub-1"))
	final := stores.events[len(stores.events)-1]
	assert.Contains(t, final.Message, "persist")
	assertStatusDiscipline(t, stores.events)
}

type stallingTranscriber struct{}

func (stallingTranscriber) Transcribe(ctx context.Context, _ string) ([]model.TranscriptSnippet, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestOrchestrator_TranscriptionDeadline(t *testing.T) {
	stores := newFakeStores(queuedSubmission(true), testProblem())
	cfg := Config{TranscriptionTimeout: 20 * time.Millisecond, PipelineTimeout: time.Second}
	o := newTestOrchestrator(stores, stallingTranscriber{}, MockEvaluator{}, MockPlanner{}, cfg)

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionFailed, stores.status("sub-1"))
	final := stores.events[len(stores.events)-1]
	assert.Contains(t, final.Message, "transcription exceeded")
	assertStatusDiscipline(t, stores.events)
}

type flakyTranscriber struct{}

func (flakyTranscriber) Transcribe(_ context.Context, audioPath string) ([]model.TranscriptSnippet, error) {
	return nil, fmt.Errorf("unreadable audio %s", audioPath)
}

func TestOrchestrator_BadAudioDegradesToEmptyTranscript(t *testing.T) {
	stores := newFakeStores(queuedSubmission(true), testProblem())
	o := newTestOrchestrator(stores, flakyTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionComplete, stores.status("sub-1"))
	require.NotNil(t, stores.results["sub-1"])
	assert.Empty(t, stores.submissions["sub-1"].Phases[model.PhaseClarify].Transcript)
}

// Audio on a subset of phases exercises concurrent transcription alongside
// skipped phases; run under -race this guards the transcript map seeding.
func TestOrchestrator_AudioOnSomePhasesOnly(t *testing.T) {
	sub := queuedSubmission(false)
	artifact := sub.Phases[model.PhaseClarify]
	artifact.AudioPath = "uploads/sub-1/audio_clarify.webm"
	sub.Phases[model.PhaseClarify] = artifact
	stores := newFakeStores(sub, testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionComplete, stores.status("sub-1"))
	assert.NotEmpty(t, stores.submissions["sub-1"].Phases[model.PhaseClarify].Transcript)
	for _, phase := range []model.PhaseName{model.PhaseEstimate, model.PhaseDesign, model.PhaseExplain} {
		assert.Empty(t, stores.submissions["sub-1"].Phases[phase].Transcript)
	}
	assertStatusDiscipline(t, stores.events)
}

func TestOrchestrator_ShutdownCancelIsNotDeadline(t *testing.T) {
	stores := newFakeStores(queuedSubmission(true), testProblem())
	cfg := Config{TranscriptionTimeout: time.Second, PipelineTimeout: time.Second}
	o := newTestOrchestrator(stores, stallingTranscriber{}, MockEvaluator{}, MockPlanner{}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	require.NoError(t, o.Run(ctx, "sub-1"))

	assert.Equal(t, model.SubmissionFailed, stores.status("sub-1"))
	final := stores.events[len(stores.events)-1]
	assert.Contains(t, final.Message, "transcription aborted")
	assert.NotContains(t, final.Message, "deadline")
}

func TestOrchestrator_TerminalSubmissionSkipped(t *testing.T) {
	sub := queuedSubmission(false)
	sub.Status = model.SubmissionComplete
	stores := newFakeStores(sub, testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Empty(t, stores.events)
	assert.Empty(t, stores.results)
	assert.Equal(t, model.SubmissionComplete, stores.status("sub-1"))
}

func TestOrchestrator_UnknownProblemFails(t *testing.T) {
	sub := queuedSubmission(false)
	sub.ProblemID = "prob-missing"
	stores := newFakeStores(sub, testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	assert.Equal(t, model.SubmissionFailed, stores.status("sub-1"))
	final := stores.events[len(stores.events)-1]
	assert.Contains(t, final.Message, "unknown problem")
}

func TestOrchestrator_FailureMessageTruncated(t *testing.T) {
	stores := newFakeStores(queuedSubmission(false), testProblem())
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	evaluator := funcEvaluator(func(context.Context, *model.Problem, PhaseInput) (*model.PhaseOutput, error) {
		return nil, errors.New(string(long))
	})
	o := newTestOrchestrator(stores, MockTranscriber{}, evaluator, MockPlanner{}, DefaultConfig())

	require.NoError(t, o.Run(context.Background(), "sub-1"))

	final := stores.events[len(stores.events)-1]
	assert.LessOrEqual(t, len(final.Message), len("Grading failed: ")+200)
}

func TestOrchestrator_MissingSubmissionIsAnError(t *testing.T) {
	stores := newFakeStores(queuedSubmission(false), testProblem())
	o := newTestOrchestrator(stores, MockTranscriber{}, MockEvaluator{}, MockPlanner{}, DefaultConfig())

	assert.Error(t, o.Run(context.Background(), "sub-nope"))
}
