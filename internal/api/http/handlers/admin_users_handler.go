package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/daviddurazo/buho-soporte-digital/internal/api/dto"
	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	apperrors "github.com/daviddurazo/buho-soporte-digital/pkg/util"
)

// AdminUsersHandler manages the admin user-management panel endpoints.
type AdminUsersHandler struct {
	profiles repository.ProfileRepository
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(profiles repository.ProfileRepository) *AdminUsersHandler {
	return &AdminUsersHandler{profiles: profiles}
}

// ListUsers GET /admin/users.
func (h *AdminUsersHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.ProfileFilter{}
	if roleStr := strings.TrimSpace(c.Query("role")); roleStr != "" {
		role := domain.UserRole(roleStr)
		if !domain.ValidRole(role) {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": roleStr})
		}
		filter.Role = &role
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	profiles, err := h.profiles.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateRole PATCH /admin/users/:id/role.
func (h *AdminUsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidRole(req.Role) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	profile, err := h.profiles.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	profile.Role = req.Role
	if err := h.profiles.Update(c.Context(), profile); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Deactivate POST /admin/users/:id/deactivate.
func (h *AdminUsersHandler) Deactivate(c *fiber.Ctx) error {
	profile, err := h.profiles.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	profile.Active = false
	if err := h.profiles.Update(c.Context(), profile); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}
