package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to a Suno-compatible generation gateway: one endpoint to
// submit a job, one to fetch its status. The gateway wraps everything in a
// {code, message, data} envelope and authenticates with a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a provider client for the given endpoint and credential.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// APIError is a provider-reported failure: the envelope decoded but its code
// was not "success", or the HTTP status was not 2xx.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider error (status %d, code %q): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error (status %d, code %q)", e.StatusCode, e.Code)
}

// SubmitRequest is the body of the submit call. Creative mode fills
// GptDescriptionPrompt; custom mode fills Prompt/Tags/Title.
type SubmitRequest struct {
	Mv                   string `json:"mv"`
	MakeInstrumental     bool   `json:"make_instrumental"`
	GptDescriptionPrompt string `json:"gpt_description_prompt,omitempty"`
	Prompt               string `json:"prompt,omitempty"`
	Tags                 string `json:"tags,omitempty"`
	Title                string `json:"title,omitempty"`
}

// FetchClip is one clip entry of the fetch response.
type FetchClip struct {
	ClipID               string  `json:"clip_id"`
	Status               string  `json:"status"`
	Title                string  `json:"title"`
	Tags                 string  `json:"tags"`
	Prompt               string  `json:"prompt"`
	AudioURL             string  `json:"audio_url"`
	ImageLargeURL        string  `json:"image_large_url"`
	Duration             float64 `json:"duration"`
	GptDescriptionPrompt string  `json:"gpt_description_prompt"`
}

// FetchData is the payload of a successful fetch call.
type FetchData struct {
	FailReason string      `json:"fail_reason"`
	SubmitTime int64       `json:"submit_time"`
	StartTime  int64       `json:"start_time"`
	FinishTime int64       `json:"finish_time"`
	Progress   string      `json:"progress"`
	Data       []FetchClip `json:"data"`
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Submit sends a generation request and returns the provider-assigned task
// id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suno/submit/music", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	data, err := c.doRequest(httpReq)
	if err != nil {
		return "", err
	}

	var taskID string
	if err := json.Unmarshal(data, &taskID); err != nil {
		return "", fmt.Errorf("unexpected submit payload: %w", err)
	}
	if strings.TrimSpace(taskID) == "" {
		return "", fmt.Errorf("provider returned an empty task id")
	}
	return taskID, nil
}

// Fetch retrieves the current status of a task.
func (c *Client) Fetch(ctx context.Context, taskID string) (*FetchData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/suno/fetch/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	data, err := c.doRequest(httpReq)
	if err != nil {
		return nil, err
	}

	var fetched FetchData
	if err := json.Unmarshal(data, &fetched); err != nil {
		return nil, fmt.Errorf("unexpected fetch payload: %w", err)
	}
	return &fetched, nil
}

// doRequest executes the call and unwraps the provider envelope. Any non-2xx
// status, non-JSON body or non-success code comes back as *APIError with the
// provider's message when one was present.
func (c *Client) doRequest(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logrus.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	}).Debug("suno request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return nil, fmt.Errorf("non-JSON response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Code != "success" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
		}
	}
	return env.Data, nil
}
