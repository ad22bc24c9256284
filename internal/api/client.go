// Package api is a typed client for the TipSlap REST contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20

// Client issues requests against the remote API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client for baseURL (for example http://localhost:3000/api/v1).
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

// RequestCode asks the remote to send a one-time code to an E.164 number.
func (c *Client) RequestCode(ctx context.Context, e164 string) error {
	return c.do(ctx, http.MethodPost, PathRequestCode, "", RequestCodeRequest{MobileNumber: e164}, nil, "Failed to send code")
}

// VerifyCode exchanges a number and code for a bearer credential.
func (c *Client) VerifyCode(ctx context.Context, req VerifyCodeRequest) (VerifyCodeResponse, error) {
	var out VerifyCodeResponse
	if err := c.do(ctx, http.MethodPost, PathVerifyCode, "", req, &out, "Invalid verification code"); err != nil {
		return VerifyCodeResponse{}, err
	}
	if out.Token == "" {
		return VerifyCodeResponse{}, &DecodeError{Endpoint: PathVerifyCode, Err: errors.New("missing token")}
	}
	if out.User != nil && out.User.ID == "" {
		return VerifyCodeResponse{}, &DecodeError{Endpoint: PathVerifyCode, Err: errors.New("user without id")}
	}
	return out, nil
}

// GetProfile fetches the profile of the credential's owner. Any non-2xx
// answer is reported as ErrNoProfile.
func (c *Client) GetProfile(ctx context.Context, token string) (Profile, error) {
	p, err := c.profileCall(ctx, http.MethodGet, PathProfile, token, nil, "Failed to load profile")
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			return Profile{}, ErrNoProfile
		}
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile replaces the name and alias of the credential's owner.
func (c *Client) UpdateProfile(ctx context.Context, token string, in ProfileInput) (Profile, error) {
	return c.profileCall(ctx, http.MethodPut, PathProfile, token, in, "Failed to update profile")
}

// CreateUser creates the profile of a freshly verified number.
func (c *Client) CreateUser(ctx context.Context, token string, in ProfileInput) (Profile, error) {
	return c.profileCall(ctx, http.MethodPost, PathUsers, token, in, "Failed to create user account")
}

// SearchUsers returns up to limit profiles matching query.
func (c *Client) SearchUsers(ctx context.Context, token, query string, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = DefaultSearchSize
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, PathSearchUsers+"?"+q.Encode(), token, nil, &out, "Failed to search users"); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []Profile{}, nil
	}
	return out.Data, nil
}

func (c *Client) profileCall(ctx context.Context, method, path, token string, body any, fallback string) (Profile, error) {
	var out ProfileEnvelope
	if err := c.do(ctx, method, path, token, body, &out, fallback); err != nil {
		return Profile{}, err
	}
	if out.Data == nil {
		return Profile{}, &DecodeError{Endpoint: path, Err: errors.New("missing data")}
	}
	return *out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any, fallback string) error {
	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Endpoint: endpoint, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", slog.String("method", method), slog.String("endpoint", endpoint), slog.Any("error", err))
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	c.logger.Debug("api request completed",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		var eb ErrorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return &RemoteError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}
