package domain

import (
	"time"
)

// Role is the identity role carried in a session token.
type Role string

const (
	RoleLearner Role = "user"
	RoleAdmin   Role = "admin"
)

// User represents a learner account
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	DateOfBirth  time.Time
	Coins        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Admin represents an administrator account. Admins hold no coins.
type Admin struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	DateOfBirth  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CoinOperation is the direction of a coin adjustment.
type CoinOperation string

const (
	CoinAdd      CoinOperation = "add"
	CoinSubtract CoinOperation = "subtract"
)

func (o CoinOperation) Valid() bool {
	return o == CoinAdd || o == CoinSubtract
}

// Delta converts an amount into a signed balance change.
func (o CoinOperation) Delta(amount int) int {
	if o == CoinSubtract {
		return -amount
	}
	return amount
}
