// Package gemini is a minimal HTTP client for the Gemini generateContent
// endpoint. It performs exactly one attempt per call; retry policy lives with
// the caller, because only the first analysis request is retried.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-1.5-pro-latest"

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// GenerationConfig mirrors the service's generationConfig payload. All fields
// are always sent: topK 0 (disabled) must reach the wire explicitly.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// SafetySetting selects a blocking threshold for one harm category.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

func defaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     1.0,
		TopP:            0.95,
		TopK:            0,
		MaxOutputTokens: 8192,
	}
}

func defaultSafetySettings() []SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = SafetySetting{Category: c, Threshold: "BLOCK_ONLY_HIGH"}
	}
	return settings
}

type part struct {
	Text string `json:"text"`
}

type contentBlock struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []contentBlock   `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// NewClient returns a client for the hosted endpoint. An empty model selects
// DefaultModel; a non-positive timeout gets a generous default, since a full
// dataset prompt can take a while to answer.
func NewClient(apiKey, model string, httpTimeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if httpTimeout <= 0 {
		httpTimeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL allows injecting a custom base URL (used in tests).
func NewClientWithBaseURL(apiKey, model string, httpTimeout time.Duration, baseURL string) *Client {
	c := NewClient(apiKey, model, httpTimeout)
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return c
}

// GenerateContent sends one generateContent request with the given text parts
// and returns the first candidate's concatenated text.
func (c *Client) GenerateContent(ctx context.Context, parts ...string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("api key is missing")
	}
	if len(parts) == 0 {
		return "", errors.New("prompt parts cannot be empty")
	}
	ps := make([]part, len(parts))
	for i, p := range parts {
		ps[i] = part{Text: p}
	}
	payload, err := json.Marshal(generateRequest{
		Contents:         []contentBlock{{Parts: ps}},
		GenerationConfig: defaultGenerationConfig(),
		SafetySettings:   defaultSafetySettings(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyAPIError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &BlockedError{Reason: out.PromptFeedback.BlockReason}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &BlockedError{Reason: finishReason(out)}
	}
	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func finishReason(out generateResponse) string {
	if len(out.Candidates) > 0 && out.Candidates[0].FinishReason != "" {
		return out.Candidates[0].FinishReason
	}
	return ""
}

// classifyAPIError maps a non-2xx response to a typed error for better UX.
func classifyAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var raw struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err == nil {
		apiErr.Message = raw.Error.Message
		apiErr.Status = raw.Error.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case resp.StatusCode == http.StatusTooManyRequests:
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: ra}
	case resp.StatusCode == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return &ServerError{APIError: apiErr}
	default:
		return apiErr
	}
}
