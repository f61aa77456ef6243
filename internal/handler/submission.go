package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/YatinKare/DesignDual/internal/model"
	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/service"
	"github.com/YatinKare/DesignDual/pkg/response"
)

type SubmissionHandler struct {
	service   *service.SubmissionService
	validator *validator.Validate
}

func NewSubmissionHandler(svc *service.SubmissionService, v *validator.Validate) *SubmissionHandler {
	return &SubmissionHandler{
		service:   svc,
		validator: v,
	}
}

type createSubmissionForm struct {
	ProblemID string `validate:"required"`
}

// Create handles POST /api/submissions
//
// Multipart form: problem_id, optional phase_times (JSON object of phase to
// minutes), canvas_<phase> file per phase (required), audio_<phase> file per
// phase (optional).
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	form := createSubmissionForm{ProblemID: c.FormValue("problem_id")}
	if err := h.validator.Struct(&form); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	phaseTimes := map[model.PhaseName]int{}
	if raw := c.FormValue("phase_times"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &phaseTimes); err != nil {
			return response.ValidationError(c, "phase_times must be a JSON object of phase to minutes", nil)
		}
		for phase := range phaseTimes {
			if !model.ValidPhases[phase] {
				return response.ValidationError(c, fmt.Sprintf("unknown phase %q in phase_times", phase), nil)
			}
		}
	}

	input := &service.CreateSubmissionInput{
		ProblemID:  form.ProblemID,
		PhaseTimes: phaseTimes,
		Canvas:     map[model.PhaseName]*multipart.FileHeader{},
		Audio:      map[model.PhaseName]*multipart.FileHeader{},
	}

	for _, phase := range model.PhaseOrder {
		canvas, err := c.FormFile(fmt.Sprintf("canvas_%s", phase))
		if err != nil {
			return response.ValidationError(c, fmt.Sprintf("canvas_%s file is required", phase), nil)
		}
		input.Canvas[phase] = canvas

		if audio, err := c.FormFile(fmt.Sprintf("audio_%s", phase)); err == nil {
			input.Audio[phase] = audio
		}
	}

	result, err := h.service.Create(c.Context(), input)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/submissions/:id/status
func (h *SubmissionHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.GetStatus(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.ServiceError(c, "Failed to load submission")
	}
	return response.OK(c, status)
}

// Result handles GET /api/submissions/:id/result
func (h *SubmissionHandler) Result(c *fiber.Ctx) error {
	submissionID := c.Params("id")

	result, err := h.service.GetResult(c.Context(), submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Distinguish "still grading" from "no such submission".
			if status, serr := h.service.GetStatus(c.Context(), submissionID); serr == nil {
				return response.Error(c, fiber.StatusConflict, response.CodeNotReady,
					fmt.Sprintf("Submission is %s, result not available yet", status.Status), nil)
			}
			return response.NotFound(c, "Submission not found")
		}
		return response.ServiceError(c, "Failed to load result")
	}
	return response.OK(c, result)
}

// Events handles GET /api/submissions/:id/events
func (h *SubmissionHandler) Events(c *fiber.Ctx) error {
	events, err := h.service.GetEvents(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.ServiceError(c, "Failed to load events")
	}
	return response.OK(c, events)
}
