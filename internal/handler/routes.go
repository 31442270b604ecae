package handler

import (
	"welearn/internal/domain"
	"welearn/internal/middleware"
	"welearn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services bundles what the route table needs.
type Services struct {
	Auth     service.AuthService
	Quiz     service.QuizService
	User     service.UserService
	Admin    service.AdminService
	Progress service.ProgressService
	Reward   service.RewardService
}

// RegisterRoutes mounts every API route on router, normally the /api group.
// All routes require a bearer token; role guards are applied per route.
func RegisterRoutes(router fiber.Router, s Services) {
	vm := middleware.NewValidationMiddleware()
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	quizID := vm.ValidateID("id", "quizId")
	userID := vm.ValidateID("userId", "userId")

	api := router.Group("", middleware.Protected(s.Auth))

	quizzes := NewQuizHandler(s.Quiz)
	api.Get("/quizzes", quizzes.ListQuizzes)
	api.Get("/quizzes/:id", quizID, quizzes.GetQuiz)
	api.Post("/quizzes", adminOnly, quizzes.CreateQuiz)
	api.Put("/quizzes/:id", adminOnly, quizID, quizzes.UpdateQuiz)
	api.Delete("/quizzes/:id", adminOnly, quizID, quizzes.DeleteQuiz)

	users := NewUserHandler(s.User)
	accountID := vm.ValidateID("id", "userId")
	api.Get("/users/me", users.GetMyProfile)
	api.Get("/users", adminOnly, users.ListUsers)
	api.Post("/users", adminOnly, users.CreateUser)
	api.Get("/users/:id", adminOnly, accountID, users.GetUser)
	api.Put("/users/:id", adminOnly, accountID, users.UpdateUser)
	api.Delete("/users/:id", adminOnly, accountID, users.DeleteUser)
	api.Put("/users/:userId/coins", middleware.SelfOrAdmin("userId"), userID, users.UpdateCoins)

	admins := NewAdminHandler(s.Admin)
	adminID := vm.ValidateID("id", "adminId")
	api.Get("/admins", adminOnly, admins.ListAdmins)
	api.Post("/admins", adminOnly, admins.CreateAdmin)
	api.Get("/admins/:id", adminOnly, adminID, admins.GetAdmin)
	api.Put("/admins/:id", adminOnly, adminID, admins.UpdateAdmin)
	api.Delete("/admins/:id", adminOnly, adminID, admins.DeleteAdmin)

	progress := NewProgressHandler(s.Progress)
	progressQuiz := vm.ValidateID("quizId", "quizId")
	api.Get("/progress/rankings", progress.GetRankings)
	api.Get("/progress/user/:userId/summary", middleware.SelfOrAdmin("userId"), userID, progress.GetSummary)
	api.Get("/progress/:userId/:quizId", middleware.SelfOrAdmin("userId"), userID, progressQuiz, progress.GetProgress)
	api.Post("/progress/:userId/:quizId/answer", middleware.Self("userId"), userID, progressQuiz, progress.RecordAnswer)

	rewards := NewRewardHandler(s.Reward)
	api.Get("/rewards/:userId/last-claim", middleware.SelfOrAdmin("userId"), userID, vm.ValidateMonth(), rewards.GetClaimHistory)
	api.Post("/rewards/:userId/claim", middleware.Self("userId"), userID, rewards.ClaimReward)
}

func invalidBody(err error) error {
	return domain.NewError(domain.CodeInvalidInput, "Request body is not valid JSON", err)
}
