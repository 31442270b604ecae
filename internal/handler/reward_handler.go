package handler

import (
	"welearn/internal/dto"
	"welearn/internal/middleware"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RewardHandler serves the daily reward calendar.
type RewardHandler struct {
	rewardService service.RewardService
}

func NewRewardHandler(rewardService service.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// GetClaimHistory godoc
// @Summary Claimed days of a month
// @Tags rewards
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param month query string false "Month as YYYY-MM, defaults to the current one"
// @Success 200 {object} dto.ClaimHistoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid month"
// @Router /rewards/{userId}/last-claim [get]
func (h *RewardHandler) GetClaimHistory(c *fiber.Ctx) error {
	month, _ := c.Locals(middleware.MonthKey).(string)
	history, err := h.rewardService.History(c.UserContext(), c.Params("userId"), month)
	if err != nil {
		return err
	}
	return c.JSON(history)
}

// ClaimReward godoc
// @Summary Claim today's reward
// @Description The claim date must be today in the server's reward timezone and the amount must match the calendar.
// @Tags rewards
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param claim body dto.ClaimRequest true "Claim"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid claim"
// @Failure 409 {object} middleware.ErrorResponse "Already claimed"
// @Router /rewards/{userId}/claim [post]
func (h *RewardHandler) ClaimReward(c *fiber.Ctx) error {
	var req dto.ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	res, err := h.rewardService.Claim(c.UserContext(), c.Params("userId"), req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
