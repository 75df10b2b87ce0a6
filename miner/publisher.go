package miner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nbd-wtf/go-nostr"
)

// HTTPPublisher posts signed events to the inscription endpoint as
// {"event": {...}}.
type HTTPPublisher struct {
	url    string
	client *http.Client
}

func NewHTTPPublisher(url string, client *http.Client) *HTTPPublisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPublisher{url: url, client: client}
}

func (p *HTTPPublisher) Publish(ctx context.Context, event *nostr.Event) error {
	// compact JSON, the endpoint rejects indented bodies
	eventJSON, err := json.Marshal(newEV(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	body, err := json.Marshal(map[string]json.RawMessage{"event": eventJSON})
	if err != nil {
		return fmt.Errorf("marshal wrapper: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0")
	req.Header.Set("Sec-ch-ua", "\"Not A(Brand\";v=\"99\", \"Microsoft Edge\";v=\"121\", \"Chromium\";v=\"121\"")
	req.Header.Set("Sec-ch-ua-mobile", "?0")
	req.Header.Set("Sec-ch-ua-platform", "\"Windows\"")
	req.Header.Set("Sec-fetch-dest", "empty")
	req.Header.Set("Sec-fetch-mode", "cors")
	req.Header.Set("Sec-fetch-site", "same-site")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post event: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
