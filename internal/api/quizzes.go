package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"quizhub/internal/model"
)

// QuizDraft is the create-quiz payload.
type QuizDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TimeLimit   *int    `json:"time_limit,omitempty"`
	QuestionIDs []int64 `json:"question_ids,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// AttemptStats aggregates the caller's solo-play history.
type AttemptStats struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	BestScore     int     `json:"best_score"`
}

// ListQuizzes returns the quiz library, optionally filtered (category, search).
func (c *Client) ListQuizzes(ctx context.Context, params url.Values) ([]model.Quiz, error) {
	data, err := c.do(ctx, http.MethodGet, "/quizzes/", params, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Quiz](data)
}

// GetQuiz fetches quiz metadata.
func (c *Client) GetQuiz(ctx context.Context, id int64) (*model.Quiz, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/quizzes/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Quiz](data)
}

// GetQuestions fetches the quiz's ordered question list with answers.
func (c *Client) GetQuestions(ctx context.Context, quizID int64) ([]model.Question, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/quizzes/%d/questions/", quizID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Question](data)
}

// CreateQuiz creates a new quiz owned by the caller.
func (c *Client) CreateQuiz(ctx context.Context, draft QuizDraft) (*model.Quiz, error) {
	body, err := jsonPayload(draft)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/quizzes/", nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Quiz](data)
}

// SubmitAttempt posts a finished attempt and returns the server's scoring.
func (c *Client) SubmitAttempt(ctx context.Context, sub model.AttemptSubmission) (*model.AttemptResult, error) {
	body, err := jsonPayload(sub)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/quiz-attempts/", nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.AttemptResult](data)
}

// MyAttempts lists the caller's past attempts.
func (c *Client) MyAttempts(ctx context.Context) ([]model.AttemptResult, error) {
	data, err := c.do(ctx, http.MethodGet, "/quiz-attempts/my_attempts/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.AttemptResult](data)
}

// GetAttemptStats returns aggregate solo-play stats.
func (c *Client) GetAttemptStats(ctx context.Context) (*AttemptStats, error) {
	data, err := c.do(ctx, http.MethodGet, "/quiz-attempts/stats/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[AttemptStats](data)
}
