package analytics

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const apiVersion = "2016-04-01"

// Collector sends custom log records to an Azure Log Analytics workspace.
// Without credentials it degrades to console logging, so the dashboard works
// in local demos with no workspace provisioned.
type Collector struct {
	workspaceID string
	sharedKey   string
	logType     string
	endpoint    string
	client      *http.Client
}

// NewCollector creates a Collector. workspaceID and sharedKey may be empty,
// which disables shipping.
func NewCollector(workspaceID, sharedKey, logType string) *Collector {
	return &Collector{
		workspaceID: workspaceID,
		sharedKey:   sharedKey,
		logType:     logType,
		endpoint:    fmt.Sprintf("https://%s.ods.opinsights.azure.com/api/logs?api-version=%s", workspaceID, apiVersion),
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether events are shipped rather than console-logged.
func (c *Collector) Enabled() bool {
	return c.workspaceID != "" && c.sharedKey != ""
}

// Send ships one event to the workspace, or logs it locally when disabled.
func (c *Collector) Send(ctx context.Context, event any) error {
	body, err := json.Marshal([]any{event})
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}

	if !c.Enabled() {
		log.Printf("[%s] %s", c.logType, body)
		return nil
	}

	date := time.Now().UTC().Format(http.TimeFormat)
	signature, err := c.buildSignature(date, len(body), http.MethodPost, "application/json", "/api/logs")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Log-Type", c.logType)
	req.Header.Set("x-ms-date", date)
	req.Header.Set("Authorization", signature)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send analytics event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics collector returned %d", resp.StatusCode)
	}
	return nil
}

// buildSignature computes the SharedKey authorization header: an HMAC-SHA256
// of the canonical request string, keyed by the base64-decoded workspace key.
func (c *Collector) buildSignature(date string, contentLength int, method, contentType, resource string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(c.sharedKey)
	if err != nil {
		return "", fmt.Errorf("decode shared key: %w", err)
	}

	stringToHash := fmt.Sprintf("%s\n%d\n%s\nx-ms-date:%s\n%s",
		method, contentLength, contentType, date, resource)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(stringToHash))
	encoded := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("SharedKey %s:%s", c.workspaceID, encoded), nil
}
