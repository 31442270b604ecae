package handler

import (
	"welearn/internal/dto"
	"welearn/internal/middleware"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles learner account requests.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMyProfile godoc
// @Summary Get My Profile
// @Description Retrieves the account of the logged-in learner, including the coin balance.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ListUsers godoc
// @Summary List learners
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} dto.UserResponse
// @Failure 403 {object} middleware.ErrorResponse "Admins only"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser godoc
// @Summary Get a learner
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// CreateUser godoc
// @Summary Create a learner
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param user body dto.AccountRequest true "Account fields"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Failure 409 {object} middleware.ErrorResponse "Username taken"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	user, err := h.userService.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser godoc
// @Summary Update a learner
// @Description A blank password keeps the current one.
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body dto.AccountRequest true "Account fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	user, err := h.userService.UpdateUser(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser godoc
// @Summary Delete a learner
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted", ID: id})
}

// UpdateCoins godoc
// @Summary Adjust a coin balance
// @Description Adds or subtracts coins atomically. A subtraction never takes the balance below zero. Only admins may add.
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param body body dto.CoinsRequest true "Amount and operation (add|subtract)"
// @Success 200 {object} dto.CoinsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Failure 403 {object} middleware.ErrorResponse "Not your account, or a learner adding coins"
// @Failure 409 {object} middleware.ErrorResponse "Not enough coins"
// @Router /users/{userId}/coins [put]
func (h *UserHandler) UpdateCoins(c *fiber.Ctx) error {
	var req dto.CoinsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	coins, err := h.userService.AdjustCoins(c.UserContext(), c.Params("userId"), req, middleware.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.CoinsResponse{Coins: coins})
}
