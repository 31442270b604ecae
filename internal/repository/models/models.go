package models

import (
	"database/sql"
	"time"
)

// Column names are upper case because Oracle reports unquoted identifiers
// that way.

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID          string         `db:"ID"`
	Title       string         `db:"TITLE"`
	Instruction sql.NullString `db:"INSTRUCTION"`
	Question    string         `db:"QUESTION"`
	Answer      string         `db:"ANSWER"`
	Category    string         `db:"CATEGORY"`
	Difficulty  string         `db:"DIFFICULTY"`
	QuizType    string         `db:"QUIZ_TYPE"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime   `db:"DELETED_AT"`
}

// User is a learner account row.
type User struct {
	ID           string       `db:"ID"`
	Username     string       `db:"USERNAME"`
	FullName     string       `db:"FULL_NAME"`
	Email        string       `db:"EMAIL"`
	PasswordHash string       `db:"PASSWORD_HASH"`
	DateOfBirth  time.Time    `db:"DATE_OF_BIRTH"`
	Coins        int          `db:"COINS"`
	CreatedAt    time.Time    `db:"CREATED_AT"`
	UpdatedAt    time.Time    `db:"UPDATED_AT"`
	DeletedAt    sql.NullTime `db:"DELETED_AT"`
}

// Admin is an administrator account row.
type Admin struct {
	ID           string       `db:"ID"`
	Username     string       `db:"USERNAME"`
	FullName     string       `db:"FULL_NAME"`
	Email        string       `db:"EMAIL"`
	PasswordHash string       `db:"PASSWORD_HASH"`
	DateOfBirth  time.Time    `db:"DATE_OF_BIRTH"`
	CreatedAt    time.Time    `db:"CREATED_AT"`
	UpdatedAt    time.Time    `db:"UPDATED_AT"`
	DeletedAt    sql.NullTime `db:"DELETED_AT"`
}

// QuizProgress is a row of quiz_progress. COMPLETED is NUMBER(1).
type QuizProgress struct {
	ID                 string       `db:"ID"`
	UserID             string       `db:"USER_ID"`
	QuizID             string       `db:"QUIZ_ID"`
	Completed          int          `db:"COMPLETED"`
	ExercisesCompleted int          `db:"EXERCISES_COMPLETED"`
	TotalTimeSpent     int          `db:"TOTAL_TIME_SPENT"`
	LastAttemptDate    sql.NullTime `db:"LAST_ATTEMPT_DATE"`
	CreatedAt          time.Time    `db:"CREATED_AT"`
	UpdatedAt          time.Time    `db:"UPDATED_AT"`
}

// RewardClaim is a row of reward_claims. CLAIM_DATE holds YYYY-MM-DD.
type RewardClaim struct {
	ID        string    `db:"ID"`
	UserID    string    `db:"USER_ID"`
	ClaimDate string    `db:"CLAIM_DATE"`
	Amount    int       `db:"AMOUNT"`
	CreatedAt time.Time `db:"CREATED_AT"`
}

// RankingRow is one row of the ranking aggregate query.
type RankingRow struct {
	Category       string `db:"CATEGORY"`
	UserID         string `db:"USER_ID"`
	Username       string `db:"USERNAME"`
	Completed      int    `db:"COMPLETED"`
	TotalTimeSpent int    `db:"TOTAL_TIME_SPENT"`
	Attempts       int    `db:"ATTEMPTS"`
}
