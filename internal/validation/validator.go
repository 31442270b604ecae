package validation

import (
	"strings"
	"time"

	"welearn/internal/domain"
)

// Validator validates request payloads that are not plain forms.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAnswerRequest validates a submitted answer
func (v *Validator) ValidateAnswerRequest(quizID, userAnswer string, timeSpent int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(quizID) == "" {
		errors = append(errors, domain.FieldError{Path: "quizId", Msg: "Quiz ID is required"})
	} else if !isValidULID(quizID) {
		errors = append(errors, domain.FieldError{Path: "quizId", Msg: "Invalid quiz id format"})
	}

	if len(userAnswer) > 2000 {
		errors = append(errors, domain.FieldError{Path: "userAnswer", Msg: "Answer must be at most 2000 characters"})
	}

	if timeSpent < 0 {
		errors = append(errors, domain.FieldError{Path: "timeSpent", Msg: "Time spent cannot be negative"})
	}

	return errors
}

// ValidateCoinRequest validates a coin adjustment
func (v *Validator) ValidateCoinRequest(amount int, operation string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if amount <= 0 {
		errors = append(errors, domain.FieldError{Path: "coins", Msg: "Coins must be a positive amount"})
	}
	if !domain.CoinOperation(operation).Valid() {
		errors = append(errors, domain.FieldError{Path: "operation", Msg: "Operation must be add or subtract"})
	}

	return errors
}

// ValidateClaimRequest validates the shape of a reward claim. Whether the
// date is claimable is decided by the reward service.
func (v *Validator) ValidateClaimRequest(claimDate string, amount int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(claimDate) == "" {
		errors = append(errors, domain.FieldError{Path: "claimDate", Msg: "Claim date is required"})
	} else if _, err := time.Parse(domain.DateLayout, claimDate); err != nil {
		errors = append(errors, domain.FieldError{Path: "claimDate", Msg: "Please enter a valid date"})
	}
	if amount <= 0 {
		errors = append(errors, domain.FieldError{Path: "rewardAmount", Msg: "Reward amount must be positive"})
	}

	return errors
}

// ValidateMonth validates a YYYY-MM month selector
func (v *Validator) ValidateMonth(month string) domain.ValidationErrors {
	if _, err := time.Parse("2006-01", month); err != nil {
		return domain.ValidationErrors{{Path: "month", Msg: "Month must be in YYYY-MM format"}}
	}
	return nil
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return ulidPattern.MatchString(s)
}
