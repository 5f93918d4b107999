package api

import (
	"encoding/json"
	"errors"
	"fmt"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// ListSessions fetches the user's past conversations, most recent first.
func (c *Client) ListSessions() ([]models.SessionSummary, error) {
	data, err := c.doJSON(http.MethodGet, models.PathChatSessions, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Sessions []models.SessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apierrors.NewParseError(fmt.Sprintf("failed to decode session list: %v", err), models.PathChatSessions)
	}
	return payload.Sessions, nil
}

// GetSession fetches one conversation with its full transcript.
func (c *Client) GetSession(id string) (*models.SessionDetail, error) {
	if id == "" {
		return nil, apierrors.ErrSessionNotFound
	}

	path := models.PathChatSessions + "/" + id
	data, err := c.doJSON(http.MethodGet, path, nil)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, apierrors.ErrSessionNotFound
		}
		return nil, err
	}

	var detail models.SessionDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, apierrors.NewParseError(fmt.Sprintf("failed to decode session: %v", err), path)
	}
	return &detail, nil
}
