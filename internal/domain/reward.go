package domain

import "time"

// DateLayout is the calendar-day key format used on the wire and in storage.
const DateLayout = "2006-01-02"

// RewardClaim records one claimed daily reward. (UserID, ClaimDate) is unique.
type RewardClaim struct {
	ID        string
	UserID    string
	ClaimDate string
	Amount    int
	CreatedAt time.Time
}
