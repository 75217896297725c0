// Package facematch wraps the external face-comparison service. The service
// is a binary oracle: the reference snapshot either matches the candidate or
// it does not; no confidence threshold is exposed at this layer.
package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Comparator compares a reference image against a candidate image.
type Comparator interface {
	Compare(ctx context.Context, reference, candidate string) (bool, error)
}

// HTTPComparator calls an HTTP face-comparison endpoint.
type HTTPComparator struct {
	url    string
	client *http.Client
}

var _ Comparator = (*HTTPComparator)(nil)

// NewHTTPComparator creates an HTTPComparator with its own timeout client.
func NewHTTPComparator(url string, timeout time.Duration) *HTTPComparator {
	return &HTTPComparator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type compareRequest struct {
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
}

type compareResponse struct {
	Match bool `json:"match"`
}

// Compare posts both encoded images and returns the binary verdict. Any
// transport or decode failure is a dependency error, not a mismatch.
func (c *HTTPComparator) Compare(ctx context.Context, reference, candidate string) (bool, error) {
	body, err := json.Marshal(compareRequest{Reference: reference, Candidate: candidate})
	if err != nil {
		return false, fmt.Errorf("encode compare request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build compare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("face service call: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("face service status %d", res.StatusCode)
	}

	var out compareResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode compare response: %w", err)
	}
	return out.Match, nil
}
