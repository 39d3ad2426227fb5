package api

import (
	"context"
	"fmt"
	"net/http"

	"quizhub/internal/model"
)

// Match lifecycle calls. The match server owns all state; these are thin
// verbs over it.

func (c *Client) ListMatches(ctx context.Context) ([]model.Match, error) {
	data, err := c.do(ctx, http.MethodGet, "/matches/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Match](data)
}

func (c *Client) CreateMatch(ctx context.Context, quizID int64) (*model.Match, error) {
	body, err := jsonPayload(map[string]int64{"quiz": quizID})
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/matches/", nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Match](data)
}

func (c *Client) GetMatch(ctx context.Context, id int64) (*model.Match, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/matches/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Match](data)
}

func (c *Client) JoinMatch(ctx context.Context, id int64) (*model.Match, error) {
	return c.matchVerb(ctx, fmt.Sprintf("/matches/%d/join/", id), nil)
}

func (c *Client) LeaveMatch(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/matches/%d/leave/", id), nil, nil)
	return err
}

func (c *Client) StartMatch(ctx context.Context, id int64) (*model.Match, error) {
	return c.matchVerb(ctx, fmt.Sprintf("/matches/%d/start/", id), nil)
}

func (c *Client) EndMatch(ctx context.Context, id int64) (*model.Match, error) {
	return c.matchVerb(ctx, fmt.Sprintf("/matches/%d/end/", id), nil)
}

// JoinByCode joins a private match via its share code.
func (c *Client) JoinByCode(ctx context.Context, code string) (*model.Match, error) {
	return c.matchVerb(ctx, "/matches/join-by-code/", map[string]string{"code": code})
}

func (c *Client) matchVerb(ctx context.Context, path string, v any) (*model.Match, error) {
	var body *payload
	if v != nil {
		b, err := jsonPayload(v)
		if err != nil {
			return nil, err
		}
		body = b
	}
	data, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Match](data)
}
