package handler

import (
	"welearn/internal/dto"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrator account requests.
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListAdmins godoc
// @Summary List administrators
// @Tags admins
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.AdminResponse
// @Router /admins [get]
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.adminService.ListAdmins(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(admins)
}

// GetAdmin godoc
// @Summary Get an administrator
// @Tags admins
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} dto.AdminResponse
// @Failure 404 {object} middleware.ErrorResponse "Admin not found"
// @Router /admins/{id} [get]
func (h *AdminHandler) GetAdmin(c *fiber.Ctx) error {
	admin, err := h.adminService.GetAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(admin)
}

// CreateAdmin godoc
// @Summary Create an administrator
// @Tags admins
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param admin body dto.AccountRequest true "Account fields"
// @Success 201 {object} dto.AdminResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Router /admins [post]
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	admin, err := h.adminService.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(admin)
}

// UpdateAdmin godoc
// @Summary Update an administrator
// @Tags admins
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param admin body dto.AccountRequest true "Account fields"
// @Success 200 {object} dto.AdminResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Router /admins/{id} [put]
func (h *AdminHandler) UpdateAdmin(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	admin, err := h.adminService.UpdateAdmin(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(admin)
}

// DeleteAdmin godoc
// @Summary Delete an administrator
// @Tags admins
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} dto.MessageResponse
// @Router /admins/{id} [delete]
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.adminService.DeleteAdmin(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Admin deleted", ID: id})
}
