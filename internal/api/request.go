package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// doJSON performs one request against the backend and returns the raw
// response body. Status codes are mapped onto the error taxonomy; the
// caller parses the body.
func (c *Client) doJSON(method, path string, payload any) ([]byte, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apierrors.NewTimeoutError(err.Error())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, apierrors.NewAuthError(errorMessage(data))
	case resp.StatusCode == http.StatusNotFound:
		return nil, apierrors.NewAPIError(resp.StatusCode, path, errorMessage(data))
	case resp.StatusCode >= 400:
		return nil, apierrors.NewAPIError(resp.StatusCode, path, errorMessage(data))
	}

	return data, nil
}

// errorMessage pulls the backend's error field out of a failure body.
func errorMessage(data []byte) string {
	if msg := gjson.GetBytes(data, "error").String(); msg != "" {
		return msg
	}
	if len(data) == 0 {
		return "no response body"
	}
	return string(data)
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
