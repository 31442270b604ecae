package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_ValidateAnswerRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateAnswerRequest(validID, "42", 5))
	assert.Equal(t, "Quiz ID is required", v.ValidateAnswerRequest("", "42", 5).Field("quizId"))
	assert.Equal(t, "Invalid quiz id format", v.ValidateAnswerRequest("q-1", "42", 5).Field("quizId"))
	assert.NotEmpty(t, v.ValidateAnswerRequest(validID, strings.Repeat("a", 2001), 5).Field("userAnswer"))
	assert.NotEmpty(t, v.ValidateAnswerRequest(validID, "42", -1).Field("timeSpent"))
}

func TestValidator_ValidateCoinRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateCoinRequest(300, "subtract"))
	errs := v.ValidateCoinRequest(0, "set")
	assert.Len(t, errs, 2)
	assert.Equal(t, "Operation must be add or subtract", errs.Field("operation"))
}

func TestValidator_ValidateClaimRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateClaimRequest("2024-06-15", 50))
	assert.Equal(t, "Please enter a valid date", v.ValidateClaimRequest("June 15", 50).Field("claimDate"))
	assert.Equal(t, "Reward amount must be positive", v.ValidateClaimRequest("2024-06-15", 0).Field("rewardAmount"))
}

func TestValidator_ValidateMonth(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.ValidateMonth("2024-06"))
	assert.NotEmpty(t, v.ValidateMonth("2024-13"))
}
