package handler

import (
	"welearn/internal/dto"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler serves quiz progress and leaderboards.
type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetSummary godoc
// @Summary Progress summary
// @Description Lists every progress record of a learner.
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.ProgressSummaryResponse
// @Failure 403 {object} middleware.ErrorResponse "Not your account"
// @Router /progress/user/{userId}/summary [get]
func (h *ProgressHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.progressService.Summary(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetRankings godoc
// @Summary Category leaderboards
// @Description Ranks learners per quiz category by completed quizzes, then by total time spent.
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.RankingsResponse
// @Router /progress/rankings [get]
func (h *ProgressHandler) GetRankings(c *fiber.Ctx) error {
	rankings, err := h.progressService.Rankings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rankings)
}

// GetProgress godoc
// @Summary Progress on one quiz
// @Description 404 means the learner has not attempted the quiz yet.
// @Tags progress
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.ProgressResponse
// @Failure 404 {object} middleware.ErrorResponse "Progress not found"
// @Router /progress/{userId}/{quizId} [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	progress, err := h.progressService.GetProgress(c.UserContext(), c.Params("userId"), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

// RecordAnswer godoc
// @Summary Submit an answer
// @Description Records an attempt. Completion is sticky. The first completion pays the reward; credited and coins report it.
// @Tags progress
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param quizId path string true "Quiz ID"
// @Param answer body dto.AnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerAck
// @Failure 400 {object} middleware.ValidationErrorResponse "Validation failed"
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /progress/{userId}/{quizId}/answer [post]
func (h *ProgressHandler) RecordAnswer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	ack, err := h.progressService.RecordAnswer(c.UserContext(), c.Params("userId"), c.Params("quizId"), req)
	if err != nil {
		return err
	}
	return c.JSON(ack)
}
