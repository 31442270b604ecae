package dto

import "time"

// AnswerRequest is one submitted answer.
type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeSpent  int    `json:"timeSpent"`
	Completed  bool   `json:"completed"`
}

// AnswerAck acknowledges a recorded answer. IsCorrect is the server's own
// verdict. AlreadyCompleted is true when the quiz was completed before
// this submission. Credited is the reward paid by this submission, and
// Coins the balance after it; both are 0 when nothing was paid.
type AnswerAck struct {
	Success          bool `json:"success"`
	IsCorrect        bool `json:"isCorrect"`
	Completed        bool `json:"completed"`
	AlreadyCompleted bool `json:"alreadyCompleted"`
	Credited         int  `json:"credited"`
	Coins            int  `json:"coins,omitempty"`
}

// ProgressResponse is one (user, quiz) progress record.
type ProgressResponse struct {
	UserID             string    `json:"userId"`
	QuizID             string    `json:"quizId"`
	Completed          bool      `json:"completed"`
	ExercisesCompleted int       `json:"exercisesCompleted"`
	TotalTimeSpent     int       `json:"totalTimeSpent"`
	LastAttemptDate    time.Time `json:"lastAttemptDate"`
}

// ProgressSummaryItem is a progress record inside a summary.
type ProgressSummaryItem struct {
	QuizID             string    `json:"quizId"`
	Completed          bool      `json:"completed"`
	ExercisesCompleted int       `json:"exercisesCompleted"`
	TotalTimeSpent     int       `json:"totalTimeSpent"`
	LastAttemptDate    time.Time `json:"lastAttemptDate"`
}

// ProgressSummaryResponse lists every quiz the learner attempted.
type ProgressSummaryResponse struct {
	Quizzes []ProgressSummaryItem `json:"quizzes"`
}

// CompletedIDs returns the ids of completed quizzes.
func (r ProgressSummaryResponse) CompletedIDs() []string {
	var ids []string
	for _, q := range r.Quizzes {
		if q.Completed {
			ids = append(ids, q.QuizID)
		}
	}
	return ids
}

// RankingEntryResponse is one leaderboard row.
type RankingEntryResponse struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Completed      int    `json:"completed"`
	TotalTimeSpent int    `json:"totalTimeSpent"`
	Attempts       int    `json:"attempts"`
}

// CategoryRankingResponse is the leaderboard of one category.
type CategoryRankingResponse struct {
	Category string                 `json:"category"`
	Entries  []RankingEntryResponse `json:"entries"`
}

// RankingsResponse holds every category leaderboard.
type RankingsResponse struct {
	Rankings []CategoryRankingResponse `json:"rankings"`
}
