package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/YatinKare/DesignDual/internal/service"
	"github.com/YatinKare/DesignDual/pkg/response"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// History handles GET /api/dashboard/history
func (h *DashboardHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return response.ServiceError(c, "Failed to load score history")
	}
	return response.OK(c, entries)
}

// Summary handles GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		return response.ServiceError(c, "Failed to load score summary")
	}
	return response.OK(c, summary)
}
