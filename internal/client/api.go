package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/madfam-org/ticketbooth/pkg/types"
)

const (
	apiKeyHeader = "x-api-key"
	userAgent    = "ticketbooth-cli/1.0.0"
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	FormErrors  []string
	FieldErrors map[string][]string
}

func (e APIError) Error() string {
	msg := fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	if e.Code != "" {
		msg = fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}

	var problems []string
	problems = append(problems, e.FormErrors...)
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, problem := range e.FieldErrors[field] {
			problems = append(problems, field+": "+problem)
		}
	}
	if len(problems) > 0 {
		msg += " [" + strings.Join(problems, "; ") + "]"
	}
	return msg
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			FormErrors  []string            `json:"formErrors"`
			FieldErrors map[string][]string `json:"fieldErrors"`
		} `json:"details"`
	} `json:"error"`
}

// Tokens
func (c *APIClient) CreateToken(ctx context.Context, req types.CreateTokenRequest) (*types.Token, error) {
	var token types.Token
	if err := c.post(ctx, "/api/tokens", req, &token); err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &token, nil
}

func (c *APIClient) ListTokens(ctx context.Context, userID string) ([]types.Token, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var tokens []types.Token
	if err := c.get(ctx, "/api/tokens?"+query.Encode(), &tokens); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	return tokens, nil
}

// Health reports whether the server answers its readiness probe.
func (c *APIClient) Health(ctx context.Context) error {
	return c.get(ctx, "/health/ready", nil)
}

func (c *APIClient) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.doRequest(req, result)
}

func (c *APIClient) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.doRequest(req, result)
}

func (c *APIClient) doRequest(req *http.Request, result interface{}) error {
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
			return APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
			}
		}
		return APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error.Code,
			Message:     envelope.Error.Message,
			FormErrors:  envelope.Error.Details.FormErrors,
			FieldErrors: envelope.Error.Details.FieldErrors,
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
