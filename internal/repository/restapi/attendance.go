package restapi

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

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
)

// maxResponseBytes bounds how much of a response body gets read; the
// attendance API returns small JSON envelopes.
const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds the attendance API client. token is the opaque
// bearer token the login flow handed to this device; the client never
// inspects it.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ attendance.AttendanceAPI = (*Client)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// message returns whichever message field the server populated.
func (e *envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != nil {
		return e.Error.Message
	}
	return ""
}

// SubmitPunch implements attendance.AttendanceAPI.
func (c *Client) SubmitPunch(ctx context.Context, req attendance.SubmitPunchRequest) (attendance.SubmitPunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SubmitPunchResponse{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return attendance.SubmitPunchResponse{}, fmt.Errorf("failed to encode punch request: %w", err)
	}

	env, status, err := c.do(ctx, http.MethodPost, "/api/v1/attendance/punch", nil, bytes.NewReader(body))
	if err != nil {
		// A transport failure carries no server message; Message stays
		// empty so callers fall back to their generic text.
		return attendance.SubmitPunchResponse{}, &attendance.SubmissionError{Err: err}
	}
	if status < 200 || status > 299 {
		return attendance.SubmitPunchResponse{}, &attendance.SubmissionError{
			StatusCode: status,
			Message:    env.message(),
		}
	}

	resp := attendance.SubmitPunchResponse{
		Status:  env.Status,
		Message: env.message(),
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var record attendance.RawDayRecord
		if err := json.Unmarshal(env.Data, &record); err != nil {
			return attendance.SubmitPunchResponse{}, fmt.Errorf("%w: %v", attendance.ErrMalformedRecord, err)
		}
		resp.Data = &record
	}
	return resp, nil
}

// FetchDay implements attendance.AttendanceAPI.
func (c *Client) FetchDay(ctx context.Context, siteID, userID, date string) (*attendance.RawDayRecord, error) {
	query := url.Values{}
	query.Set("site_id", siteID)
	query.Set("user_id", userID)
	query.Set("date", date)

	env, status, err := c.do(ctx, http.MethodGet, "/api/v1/attendance", query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("attendance fetch failed with status %d: %s", status, env.message())
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}

	var records []attendance.RawDayRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		// Some deployments return the record bare instead of as a
		// one-element array.
		var single attendance.RawDayRecord
		if err2 := json.Unmarshal(env.Data, &single); err2 != nil {
			return nil, fmt.Errorf("%w: %v", attendance.ErrMalformedRecord, err)
		}
		return &single, nil
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (envelope, int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(data) > 0 {
		// A body that is not the expected envelope is tolerated; the
		// status code still classifies the outcome.
		_ = json.Unmarshal(data, &env)
	}
	return env, resp.StatusCode, nil
}
