package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daviddurazo/buho-soporte-digital/internal/api/dto"
	"github.com/daviddurazo/buho-soporte-digital/internal/auth"
	"github.com/daviddurazo/buho-soporte-digital/internal/service"
	apperrors "github.com/daviddurazo/buho-soporte-digital/pkg/util"
)

// TriageHandler manages technician and admin workflow endpoints.
type TriageHandler struct {
	service *service.TicketService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(ticketService *service.TicketService) *TriageHandler {
	return &TriageHandler{service: ticketService}
}

// ClaimTicket POST /tickets/:id/claim.
func (h *TriageHandler) ClaimTicket(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.ClaimTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// AssignTicket PATCH /tickets/:id/assign.
func (h *TriageHandler) AssignTicket(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	ticket, err := h.service.AssignTicket(c.Context(), actor, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TriageHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TriageHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.Context(), actor, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket, time.Now())})
}

// BulkUpdateStatus POST /tickets/bulk/status.
func (h *TriageHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	result, err := h.service.BulkUpdateStatus(c.Context(), actor, req.TicketIDs, req.Status)
	if err != nil {
		return err
	}

	failed := make([]dto.BulkStatusFailure, 0, len(result.Failed))
	for _, failure := range result.Failed {
		failed = append(failed, dto.BulkStatusFailure{TicketID: failure.TicketID, Reason: failure.Reason})
	}
	return c.JSON(fiber.Map{"data": dto.BulkStatusResponse{
		Updated: result.Updated,
		Failed:  failed,
	}})
}
