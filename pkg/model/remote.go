package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/net"
)

// RemoteClassifier calls an external scoring service over HTTP. The service
// receives the named feature vector and returns the risk probability.
type RemoteClassifier struct {
	url    string
	client *http.Client
}

type remotePredictRequest struct {
	Features map[string]float64 `json:"features"`
}

type remotePredictResponse struct {
	RiskProbability float64 `json:"risk_probability"`
}

// NewRemoteClassifier creates a classifier client for the given endpoint.
// When token is non-empty, every request carries it as a bearer token.
func NewRemoteClassifier(ctx context.Context, url, token string) (*RemoteClassifier, error) {
	if url == "" {
		return nil, fmt.Errorf("classifier url is required")
	}

	var client *http.Client
	var err error
	if token != "" {
		client = net.GetOAuthClient(ctx, token)
	} else {
		client, err = net.GetHTTPClient()
		if err != nil {
			return nil, fmt.Errorf("creating http client: %w", err)
		}
	}

	return &RemoteClassifier{url: url, client: client}, nil
}

// Predict posts the feature vector to the scoring service. Range validation
// of the returned probability is left to the score mapper so classifier
// faults surface as such.
func (c *RemoteClassifier) Predict(ctx context.Context, features map[string]float64) (float64, error) {
	body, err := json.Marshal(remotePredictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("marshalling predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling classifier service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("classifier service returned %s: %s", res.Status, string(b))
	}

	var out remotePredictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding classifier response: %w", err)
	}

	return out.RiskProbability, nil
}
