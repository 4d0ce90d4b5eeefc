package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxMessageBytes bounds request bodies accepted by the HTTP transport.
const maxMessageBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// Handler exposes the background context over HTTP. Messages with no
// receiver answer 404, handler failures 500, and nil responses 204.
func (b *Bus) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var msg Message
		if err := json.NewDecoder(io.LimitReader(r.Body, maxMessageBytes)).Decode(&msg); err != nil || msg.Action == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid message"})
			return
		}

		resp, err := b.Send(r.Context(), Background, msg)
		switch {
		case errors.Is(err, ErrNoReceiver):
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		case resp == nil:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, resp)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Client sends messages to a remote background context.
type Client struct {
	URL  string
	HTTP *http.Client
}

// Send posts msg and decodes the JSON response into out when out is non-nil.
func (c *Client) Send(ctx context.Context, msg Message, out any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", msg.Action, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg.Action, ErrNoReceiver)
	case resp.StatusCode >= 300:
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return fmt.Errorf("%s: %s: %s", msg.Action, resp.Status, strings.TrimSpace(eb.Error))
	case resp.StatusCode == http.StatusNoContent || out == nil:
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
