package domain

import "context"

// InsufficientBalanceError is returned by UserRepository.AdjustCoins when the
// adjustment would take the balance below zero.
type InsufficientBalanceError struct {
	Balance int
}

func (e *InsufficientBalanceError) Error() string {
	return "insufficient balance"
}

// QuizRepository defines the interface for quiz persistence.
// Lookups return (nil, nil) when the row does not exist.
type QuizRepository interface {
	ListQuizzes(ctx context.Context) ([]*Quiz, error)
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
}

// UserRepository defines the interface for learner persistence
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error

	// AdjustCoins applies delta as a single conditional update and returns
	// the new balance. It never lets the balance go negative.
	AdjustCoins(ctx context.Context, id string, delta int) (int, error)
}

// AdminRepository defines the interface for administrator persistence
type AdminRepository interface {
	ListAdmins(ctx context.Context) ([]*Admin, error)
	GetAdminByID(ctx context.Context, id string) (*Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
	CreateAdmin(ctx context.Context, admin *Admin) error
	UpdateAdmin(ctx context.Context, admin *Admin) error
	DeleteAdmin(ctx context.Context, id string) error
}

// ProgressRepository defines the interface for quiz progress persistence
type ProgressRepository interface {
	GetProgress(ctx context.Context, userID, quizID string) (*QuizProgress, error)
	ListProgressByUser(ctx context.Context, userID string) ([]*QuizProgress, error)
	CreateProgress(ctx context.Context, progress *QuizProgress) error
	UpdateProgress(ctx context.Context, progress *QuizProgress) error
	// MarkRewarded flags a completed record as paid. It reports false when the
	// record is not completed or was already paid.
	MarkRewarded(ctx context.Context, userID, quizID string) (bool, error)
	ListRankingRows(ctx context.Context) ([]RankingRow, error)
}

// RewardRepository defines the interface for daily reward claims
type RewardRepository interface {
	GetClaim(ctx context.Context, userID, claimDate string) (*RewardClaim, error)
	CreateClaim(ctx context.Context, claim *RewardClaim) error
	// ListClaimDates returns claimed dates in [from, to], both inclusive.
	ListClaimDates(ctx context.Context, userID, from, to string) ([]string, error)
	GetLastClaimDate(ctx context.Context, userID string) (string, error)
}

// TransactionManager runs fn with a transaction bound to its context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
