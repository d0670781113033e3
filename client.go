package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type APIClient struct {
	httpClient *http.Client
}

func NewAPIClient() *APIClient {
	return &APIClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// FetchRoster downloads a roster published in the JSON export format.
func (c *APIClient) FetchRoster(ctx context.Context, url string) ([]Employee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		var errRes errorResponse
		if err := json.Unmarshal(body, &errRes); err == nil && errRes.Message != "" {
			return nil, fmt.Errorf("%s: %s", res.Status, errRes.Message)
		}
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	employees, err := decodeRosterJSON(body)
	if err != nil {
		return nil, fmt.Errorf("error decoding roster: %w", err)
	}
	return employees, nil
}
