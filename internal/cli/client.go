package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
)

// apiClient talks to the server's settings and alarm endpoints.
type apiClient struct {
	baseURL string
	http    *http.Client
	runtime *messenger.Client
}

func newAPIClient(baseURL string) *apiClient {
	hc := &http.Client{Timeout: 10 * time.Second}
	return &apiClient{
		baseURL: baseURL,
		http:    hc,
		runtime: &messenger.Client{URL: baseURL + "/runtime/message", HTTP: hc},
	}
}

func (c *apiClient) settings(ctx context.Context) (model.Settings, error) {
	var out model.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, &out)
	return out, err
}

func (c *apiClient) saveSettings(ctx context.Context, scope model.Scope, values map[string]string) (model.Settings, error) {
	path := "/settings"
	if scope == model.ScopeLocal {
		path += "?scope=local"
	}
	var out model.Settings
	err := c.do(ctx, http.MethodPut, path, values, &out)
	return out, err
}

func (c *apiClient) profile(ctx context.Context) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodGet, "/profile", nil, &out)
	return out, err
}

func (c *apiClient) alarm(ctx context.Context, name string) (*model.Alarm, error) {
	var out model.Alarm
	if err := c.do(ctx, http.MethodGet, "/alarms/"+name, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %s %s", method, path, resp.Status, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
