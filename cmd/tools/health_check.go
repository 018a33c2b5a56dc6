package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

func main() {
	defaultURL := os.Getenv("NFTSTAT_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	url := flag.String("url", defaultURL, "base URL of the nftStatApp service")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	fmt.Println("nftStatApp Health Check Utility")
	fmt.Println("-------------------------------")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := checkServiceHealth(ctx, *url+"/health")
	if err != nil {
		color.Red("Health check failed: %v", err)
		os.Exit(1)
	}

	for name, state := range report {
		if name == "status" {
			continue
		}
		fmt.Printf("  %-12s %s\n", name, state)
	}

	if report["status"] == "ok" {
		color.Green("Service is healthy!")
		return
	}
	color.Yellow("Service is NOT healthy! (status %q)", report["status"])
	os.Exit(2)
}

// checkServiceHealth fetches the /health report. Degraded services answer 503
// with a body, so only transport and decode failures are errors.
func checkServiceHealth(ctx context.Context, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	report := make(map[string]string)
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode %s response (HTTP %d): %w", url, resp.StatusCode, err)
	}
	return report, nil
}
