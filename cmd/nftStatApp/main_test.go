package main

import (
	"net/http"
	"os"
	"testing"
	"time"

	"nftStatApp/internal/app/dto"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseURL points the integration tests at a running instance.
func baseURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("NFTSTAT_URL")
	if url == "" {
		t.Skip("NFTSTAT_URL not set, skipping integration test")
	}
	return url
}

func TestHealthEndpoint(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatsEndpoint(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats dto.GlobalStatsDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.NotNil(t, stats.SalesByDay)
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{envLocal, envDev, envProd, "staging"} {
		assert.NotNil(t, setupLogger(env), env)
	}
}
