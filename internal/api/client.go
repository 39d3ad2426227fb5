// Package api is the authenticated HTTP client for the QuizHub backend. It
// attaches bearer credentials to every call and transparently performs a
// single token-refresh retry on 401; everything else propagates to the
// caller mapped onto the errs taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/errs"
	"quizhub/internal/session"
)

// Client wraps outbound calls to the backend. All resource methods funnel
// through do, so credential attachment and refresh behave identically
// regardless of caller.
type Client struct {
	base  string
	hc    *http.Client
	store session.Store
	log   *zap.Logger
}

// New constructs a Client. The store is required; it is the only place the
// client reads or writes credentials. A nil logger disables logging.
func New(base string, store session.Store, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: 30 * time.Second},
		store: store,
		log:   logger,
	}
}

// SetTimeout bounds a single call, refresh retry included.
func (c *Client) SetTimeout(d time.Duration) { c.hc.Timeout = d }

// payload is a prepared request body, kept as bytes so the 401 retry can
// resend it verbatim.
type payload struct {
	contentType string
	data        []byte
}

func jsonPayload(v any) (*payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &payload{contentType: "application/json", data: b}, nil
}

// do performs one API call with bearer attachment and the single
// refresh-retry protocol. It returns the raw 2xx response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body *payload) ([]byte, error) {
	creds, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	start := time.Now()
	status, respBody, err := c.send(ctx, method, path, params, body, creds.Access)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", errs.ErrNetwork, method, path, err)
	}

	if status == http.StatusUnauthorized {
		if creds.Refresh == "" {
			// Nothing to refresh with; surface as auth failure but keep
			// whatever session state exists (public pages stay usable).
			return nil, fmt.Errorf("%w: %s %s", errs.ErrAuth, method, path)
		}
		access, rerr := c.refresh(ctx, creds.Refresh)
		if rerr != nil {
			// Irrecoverable: drop all local credentials, caller decides
			// navigation.
			_ = c.store.Clear()
			c.log.Warn("token refresh failed", zap.Error(rerr))
			return nil, fmt.Errorf("%w: refresh: %v", errs.ErrAuth, rerr)
		}
		if err := c.store.SetTokens(access, ""); err != nil {
			return nil, fmt.Errorf("session save: %w", err)
		}
		c.log.Info("access token refreshed")

		status, respBody, err = c.send(ctx, method, path, params, body, access)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", errs.ErrNetwork, method, path, err)
		}
		if status == http.StatusUnauthorized {
			// Retry budget is exactly one; a second 401 terminates.
			_ = c.store.Clear()
			return nil, fmt.Errorf("%w: %s %s after refresh", errs.ErrAuth, method, path)
		}
	}

	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)),
	)

	if status >= 200 && status < 300 {
		return respBody, nil
	}
	return nil, mapStatus(method, path, status, respBody)
}

// send performs a single HTTP round trip with the given bearer token
// ("" means unauthenticated).
func (c *Client) send(ctx context.Context, method, path string, params url.Values, body *payload, token string) (int, []byte, error) {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body.data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, b, nil
}

// refresh exchanges the refresh token for a new access token. Exactly one
// attempt; the call itself is unauthenticated.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := jsonPayload(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	status, respBody, err := c.send(ctx, http.MethodPost, "/auth/refresh/", nil, body, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("refresh endpoint returned %d", status)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return out.Access, nil
}

// mapStatus maps a non-2xx status class onto the error taxonomy. Bodies are
// surfaced unmodified apart from field-error extraction.
func mapStatus(method, path string, status int, body []byte) error {
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", errs.ErrNotFound, method, path)
	case status >= 500:
		return fmt.Errorf("%w: %s %s returned %d", errs.ErrServer, method, path, status)
	case status >= 400:
		if fe := parseFieldErrors(body); fe != nil {
			return fe
		}
		return fmt.Errorf("%w: %s %s returned %d", errs.ErrValidation, method, path, status)
	default:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, status)
	}
}

// parseFieldErrors extracts Django-style field error maps from a 4xx body:
// {"field": ["msg", ...]} with "error"/"detail" as message keys.
func parseFieldErrors(body []byte) *errs.FieldErrors {
	var raw map[string]any
	if json.Unmarshal(body, &raw) != nil || len(raw) == 0 {
		return nil
	}
	fields := make(map[string][]string, len(raw))
	for k, v := range raw {
		switch vv := v.(type) {
		case string:
			fields[k] = []string{vv}
		case []any:
			for _, item := range vv {
				if s, ok := item.(string); ok {
					fields[k] = append(fields[k], s)
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &errs.FieldErrors{Fields: fields}
}
