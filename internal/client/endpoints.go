package client

import (
	"context"
	"net/http"
	"net/url"

	"welearn/internal/domain"
	"welearn/internal/dto"
)

func seg(s string) string {
	return url.PathEscape(s)
}

// ListQuizzes returns every quiz.
func (c *Client) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var resp []dto.QuizResponse
	if err := c.do(ctx, http.MethodGet, "/quizzes", nil, &resp); err != nil {
		return nil, err
	}
	quizzes := make([]domain.Quiz, 0, len(resp))
	for _, q := range resp {
		quizzes = append(quizzes, toQuiz(q))
	}
	return quizzes, nil
}

// GetQuiz returns one quiz.
func (c *Client) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	var resp dto.QuizResponse
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+seg(id), nil, &resp); err != nil {
		return nil, err
	}
	q := toQuiz(resp)
	return &q, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProgressSummary lists the learner's progress records.
func (c *Client) ProgressSummary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
	var resp dto.ProgressSummaryResponse
	if err := c.do(ctx, http.MethodGet, "/progress/user/"+seg(userID)+"/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProgress returns nil without error when the learner never attempted the quiz.
func (c *Client) GetProgress(ctx context.Context, userID, quizID string) (*dto.ProgressResponse, error) {
	var resp dto.ProgressResponse
	err := c.do(ctx, http.MethodGet, "/progress/"+seg(userID)+"/"+seg(quizID), nil, &resp)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordAnswer records one submitted answer.
func (c *Client) RecordAnswer(ctx context.Context, userID, quizID string, req dto.AnswerRequest) (*dto.AnswerAck, error) {
	var resp dto.AnswerAck
	if err := c.do(ctx, http.MethodPost, "/progress/"+seg(userID)+"/"+seg(quizID)+"/answer", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCoins adds or subtracts amount and returns the new balance.
func (c *Client) UpdateCoins(ctx context.Context, userID string, amount int, op domain.CoinOperation) (int, error) {
	var resp dto.CoinsResponse
	body := dto.CoinsRequest{Coins: amount, Operation: string(op)}
	if err := c.do(ctx, http.MethodPut, "/users/"+seg(userID)+"/coins", body, &resp); err != nil {
		return 0, err
	}
	return resp.Coins, nil
}

// ClaimHistory returns the claimed dates of month (YYYY-MM); an empty
// month means the current one.
func (c *Client) ClaimHistory(ctx context.Context, userID, month string) (*dto.ClaimHistoryResponse, error) {
	path := "/rewards/" + seg(userID) + "/last-claim"
	if month != "" {
		path += "?month=" + url.QueryEscape(month)
	}
	var resp dto.ClaimHistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.ClaimedDates) == 0 && resp.LastClaim != "" {
		resp.ClaimedDates = []string{resp.LastClaim}
	}
	return &resp, nil
}

// ClaimReward claims the daily reward.
func (c *Client) ClaimReward(ctx context.Context, userID string, req dto.ClaimRequest) (*dto.ClaimResponse, error) {
	var resp dto.ClaimResponse
	if err := c.do(ctx, http.MethodPost, "/rewards/"+seg(userID)+"/claim", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Rankings returns the per-category leaderboards.
func (c *Client) Rankings(ctx context.Context) (*dto.RankingsResponse, error) {
	var resp dto.RankingsResponse
	if err := c.do(ctx, http.MethodGet, "/progress/rankings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func toQuiz(q dto.QuizResponse) domain.Quiz {
	return domain.Quiz{
		ID:          q.ID,
		Title:       q.Title,
		Instruction: q.Instruction,
		Question:    q.Question,
		Answer:      q.Answer,
		Category:    q.Category,
		Difficulty:  q.Difficulty,
		Type:        q.Type,
	}
}
