package domain

import "time"

// QuizProgress is the per (user, quiz) learning record. Completed never
// reverts to false once set.
type QuizProgress struct {
	ID                 string
	UserID             string
	QuizID             string
	Completed          bool
	ExercisesCompleted int
	TotalTimeSpent     int // seconds
	LastAttemptDate    time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AnswerSubmission is one submitted answer for a quiz.
type AnswerSubmission struct {
	QuestionID string
	UserAnswer string
	IsCorrect  bool
	TimeSpent  int
	Completed  bool
}

// Apply folds a submission into the record and reports whether the quiz
// was already completed before this submission.
func (p *QuizProgress) Apply(sub AnswerSubmission, at time.Time) (alreadyCompleted bool) {
	alreadyCompleted = p.Completed
	p.ExercisesCompleted++
	if sub.TimeSpent > 0 {
		p.TotalTimeSpent += sub.TimeSpent
	}
	if sub.Completed {
		p.Completed = true
	}
	p.LastAttemptDate = at
	p.UpdatedAt = at
	return alreadyCompleted
}

// RankingRow is a per category, per user aggregate of progress.
type RankingRow struct {
	Category       string
	UserID         string
	Username       string
	Completed      int
	TotalTimeSpent int
	Attempts       int
}

// RankingEntry is a ranked RankingRow.
type RankingEntry struct {
	Rank int
	RankingRow
}

// CategoryRanking is the leaderboard of one category.
type CategoryRanking struct {
	Category string
	Entries  []RankingEntry
}
