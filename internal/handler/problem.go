package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/service"
	"github.com/YatinKare/DesignDual/pkg/response"
)

type ProblemHandler struct {
	service *service.ProblemService
}

func NewProblemHandler(svc *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{service: svc}
}

// List handles GET /api/problems
func (h *ProblemHandler) List(c *fiber.Ctx) error {
	problems, err := h.service.List(c.Context())
	if err != nil {
		return response.ServiceError(c, "Failed to load problems")
	}
	return response.OK(c, problems)
}

// Get handles GET /api/problems/:id
func (h *ProblemHandler) Get(c *fiber.Ctx) error {
	problem, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "Problem not found")
		}
		return response.ServiceError(c, "Failed to load problem")
	}
	return response.OK(c, problem)
}
