package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClassifier_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req remotePredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 45.0, req.Features["txn_count"])

		json.NewEncoder(w).Encode(remotePredictResponse{RiskProbability: 0.2})
	}))
	defer srv.Close()

	c, err := NewRemoteClassifier(context.Background(), srv.URL, "test-token")
	require.NoError(t, err)

	p, err := c.Predict(context.Background(), testFeatures())
	require.NoError(t, err)
	assert.Equal(t, 0.2, p)
}

func TestRemoteClassifier_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(remotePredictResponse{RiskProbability: 0.7})
	}))
	defer srv.Close()

	c, err := NewRemoteClassifier(context.Background(), srv.URL, "")
	require.NoError(t, err)

	p, err := c.Predict(context.Background(), testFeatures())
	require.NoError(t, err)
	assert.Equal(t, 0.7, p)
}

func TestRemoteClassifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewRemoteClassifier(context.Background(), srv.URL, "")
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), testFeatures())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestRemoteClassifier_EmptyURL(t *testing.T) {
	_, err := NewRemoteClassifier(context.Background(), "", "")
	assert.Error(t, err)
}
