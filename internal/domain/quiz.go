package domain

import (
	"strings"
	"time"
)

// Quiz types.
const (
	QuizTypeFillInBlank   = "fill-in-the-blank"
	QuizTypeMultipleBlank = "multiple-blank"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// KnownCategories lists the quiz categories shown in the learner sidebar.
var KnownCategories = []string{
	"Sorting Algorithms",
	"Searching Algorithms",
	"Binary Operations",
	"Data Structures",
	"Recursion",
}

// Quiz is one fill-in-the-blank exercise. Answer holds the canonical
// answer; multi-blank answers are comma-separated ("5, 12, 15").
type Quiz struct {
	ID          string
	Title       string
	Instruction string
	Question    string
	Answer      string
	Category    string
	Difficulty  string
	Type        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewQuiz creates a new Quiz instance
func NewQuiz(title, instruction, question, answer, category, difficulty, quizType string) *Quiz {
	now := time.Now()
	return &Quiz{
		Title:       title,
		Instruction: instruction,
		Question:    question,
		Answer:      answer,
		Category:    category,
		Difficulty:  difficulty,
		Type:        quizType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeAnswer trims surrounding whitespace and lowercases.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect compares the normalized input against the normalized canonical
// answer as whole strings. Spacing inside a multi-blank answer must match.
func (q *Quiz) IsCorrect(input string) bool {
	if q == nil {
		return false
	}
	return NormalizeAnswer(input) == NormalizeAnswer(q.Answer)
}

// Blanks returns how many comma-separated answers the quiz expects.
func (q *Quiz) Blanks() int {
	if strings.TrimSpace(q.Answer) == "" {
		return 0
	}
	return len(strings.Split(q.Answer, ","))
}
