package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/YatinKare/DesignDual/internal/config"
	"github.com/YatinKare/DesignDual/internal/grading"
	"github.com/YatinKare/DesignDual/internal/model"
)

// GeminiClient handles communication with the Gemini API. It backs all three
// grading capabilities: transcription, phase evaluation, and plan generation.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"response_mime_type"`
	} `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generateContent sends one multimodal request and returns the model's text.
func (c *GeminiClient) generateContent(ctx context.Context, parts []geminiPart) (string, error) {
	var reqBody generateContentRequest
	reqBody.Contents = append(reqBody.Contents, struct {
		Parts []geminiPart `json:"parts"`
	}{Parts: parts})
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	return stripMarkdownFence(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// stripMarkdownFence removes a ```json ... ``` wrapper the model sometimes
// adds despite the JSON mime type.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func inlineFilePart(path, mimeType string) (geminiPart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geminiPart{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}, nil
}

// Transcribe converts one audio clip into timestamped snippets.
func (c *GeminiClient) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSnippet, error) {
	audioPart, err := inlineFilePart(audioPath, "audio/webm")
	if err != nil {
		return nil, err
	}

	prompt := `Transcribe this recording of a candidate thinking aloud during a system design interview.
Return a JSON array of segments, each {"timestamp_sec": <number>, "text": "<spoken words>"}.
Split segments at natural pauses, roughly one sentence each. Return only the JSON array.`

	text, err := c.generateContent(ctx, []geminiPart{{Text: prompt}, audioPart})
	if err != nil {
		return nil, err
	}

	var snippets []model.TranscriptSnippet
	if err := json.Unmarshal([]byte(text), &snippets); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return snippets, nil
}

// EvaluatePhase scores one phase from its canvas snapshot and transcript.
// The response is parsed as-is; schema validation happens at the caller.
func (c *GeminiClient) EvaluatePhase(ctx context.Context, problem *model.Problem, input grading.PhaseInput) (*model.PhaseOutput, error) {
	transcriptJSON, err := json.Marshal(input.Transcripts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcripts: %w", err)
	}

	prompt := fmt.Sprintf(`You are grading the %q phase of a system design interview.

Problem: %s
Prompt: %s
Constraints: %s

The attached image is the candidate's whiteboard at the end of this phase.
Their spoken reasoning during the phase, as timestamped segments:
%s

Score this phase from 0 to 10 and return a JSON object with exactly these fields:
{
  "phase": %q,
  "score": <number 0-10>,
  "bullets": [<3 to 6 short feedback strings>],
  "evidence": {"phase": %q, "snapshot_url": %q, "transcripts": [<up to 3 of the given segments that most influenced the score>], "noticed": {"strength": "<optional>", "issue": "<optional>"}},
  "strengths": [<1 to 3 of {"phase": %q, "text": "...", "timestamp_sec": <number or null>}>],
  "weaknesses": [<1 to 2 of the same shape>],
  "highlights": [<0 to 2 of the same shape, only standout moments>]
}`,
		input.Phase, problem.Title, problem.Prompt, strings.Join(problem.Constraints, "; "),
		string(transcriptJSON),
		input.Phase, input.Phase, input.SnapshotPath, input.Phase,
	)

	parts := []geminiPart{{Text: prompt}}
	if input.SnapshotPath != "" {
		imagePart, err := inlineFilePart(input.SnapshotPath, "image/png")
		if err != nil {
			return nil, err
		}
		parts = append(parts, imagePart)
	}

	text, err := c.generateContent(ctx, parts)
	if err != nil {
		return nil, err
	}

	var out model.PhaseOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", grading.ErrInvalidPhaseOutput, err)
	}
	return &out, nil
}

// BuildPlan generates the improvement plan, follow-up questions, and
// reference outline from the full set of phase reports.
func (c *GeminiClient) BuildPlan(ctx context.Context, problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *grading.RubricRadar) (*grading.PlanOutline, error) {
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode phase outputs: %w", err)
	}
	rubricJSON, err := json.Marshal(grading.LowestRubricItems(rr.Rubric))
	if err != nil {
		return nil, fmt.Errorf("failed to encode rubric: %w", err)
	}

	prompt := fmt.Sprintf(`A candidate just finished a system design interview for %q and scored %.1f/10 (%s).

Per-phase reports:
%s

Rubric scores (lowest first should drive the plan):
%s

Return a JSON object:
{
  "next_attempt_plan": [<exactly 3 of {"what_went_wrong": "...", "do_next_time": "..."}, prioritized by the lowest rubric scores>],
  "follow_up_questions": [<at least 3 probing questions an interviewer would ask next>],
  "reference_outline": {"sections": [<4 to 6 of {"section": "...", "bullets": [<3 to 6 strings>]}, outlining a strong solution>]}
}`,
		problem.Title, rr.OverallScore, rr.Verdict, string(outputsJSON), string(rubricJSON),
	)

	text, err := c.generateContent(ctx, []geminiPart{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	var plan grading.PlanOutline
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &plan, nil
}
