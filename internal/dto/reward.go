package dto

// ClaimRequest claims the daily reward for ClaimDate (YYYY-MM-DD).
type ClaimRequest struct {
	ClaimDate    string `json:"claimDate"`
	RewardAmount int    `json:"rewardAmount"`
}

// ClaimResponse reports the balance after a successful claim.
type ClaimResponse struct {
	Success     bool   `json:"success"`
	NewCoins    int    `json:"newCoins"`
	ClaimedDate string `json:"claimedDate"`
}

// ClaimHistoryResponse lists the claimed dates of one month. LastClaim is
// the most recent claim overall and is kept for older clients.
type ClaimHistoryResponse struct {
	ClaimedDates []string `json:"claimedDates"`
	LastClaim    string   `json:"lastClaim,omitempty"`
}
