package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// AccountRequest is the body of user and admin create/update calls.
// Password may be blank on update to keep the current one.
type AccountRequest struct {
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	DateOfBirth string `json:"dateOfBirth"`
}

// Fields returns the form values keyed by validation field name.
func (r AccountRequest) Fields(idField, id string) map[string]string {
	fields := map[string]string{
		"username":    r.Username,
		"fullName":    r.FullName,
		"email":       r.Email,
		"password":    r.Password,
		"dateOfBirth": r.DateOfBirth,
	}
	if idField != "" {
		fields[idField] = id
	}
	return fields
}

// UserResponse defines the structure for a learner account.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"dateOfBirth"`
	Coins       int       `json:"coins"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminResponse defines the structure for an administrator account.
type AdminResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CoinsRequest adjusts a balance. Operation is "add" or "subtract".
type CoinsRequest struct {
	Coins     int    `json:"coins"`
	Operation string `json:"operation"`
}

// CoinsResponse carries the balance after an adjustment.
type CoinsResponse struct {
	Coins int `json:"coins"`
}

// MessageResponse is a generic success response.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
