package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"quizhub/internal/model"
)

// GlobalRankings returns the site-wide leaderboard.
func (c *Client) GlobalRankings(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return c.rankings(ctx, "/leaderboards/global_rankings/", nil)
}

// CategoryRankings returns the leaderboard for one category.
func (c *Client) CategoryRankings(ctx context.Context, categoryID int64) ([]model.LeaderboardEntry, error) {
	params := url.Values{"category": {strconv.FormatInt(categoryID, 10)}}
	return c.rankings(ctx, "/leaderboards/category_rankings/", params)
}

// QuizRankings returns the leaderboard for one quiz.
func (c *Client) QuizRankings(ctx context.Context, quizID int64) ([]model.LeaderboardEntry, error) {
	params := url.Values{"quiz": {strconv.FormatInt(quizID, 10)}}
	return c.rankings(ctx, "/leaderboards/quiz_rankings/", params)
}

func (c *Client) rankings(ctx context.Context, path string, params url.Values) ([]model.LeaderboardEntry, error) {
	data, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.LeaderboardEntry](data)
}
