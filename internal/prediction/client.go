// Package prediction proxies maternal risk scoring to an external
// inference service.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Features is the fixed input vector the inference service expects.
// Field names match its wire contract.
type Features struct {
	Age         float64 `json:"Age"`
	SystolicBP  float64 `json:"SystolicBP"`
	DiastolicBP float64 `json:"DiastolicBP"`
	BS          float64 `json:"BS"`
	BodyTemp    float64 `json:"BodyTemp"`
	HeartRate   float64 `json:"HeartRate"`
}

// Client calls the risk inference service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type predictResponse struct {
	Prediction string `json:"prediction"`
	Error      string `json:"error"`
}

// Predict forwards the feature vector and returns the service's risk
// label.
func (c *Client) Predict(ctx context.Context, f Features) (string, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("inference service: %s", out.Error)
		}
		return "", fmt.Errorf("inference service returned %d", resp.StatusCode)
	}
	if out.Prediction == "" {
		return "", fmt.Errorf("inference service returned no prediction")
	}
	return out.Prediction, nil
}
