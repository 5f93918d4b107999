package api

import (
	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// sendPayload is the request body for POST /api/chat/send.
type sendPayload struct {
	Message   string         `json:"message"`
	SessionID string         `json:"session_id,omitempty"`
	Location  *locationField `json:"location,omitempty"`
}

type locationField struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// sendChat performs one chat exchange and parses the response envelope.
// Crisis fields are extracted tolerantly: an absent or malformed is_crisis
// reads as false, never as a crisis.
func (c *Client) sendChat(message, sessionID string, loc models.Location) (models.ChatEnvelope, error) {
	payload := sendPayload{
		Message:   message,
		SessionID: sessionID,
	}
	if loc.Known {
		payload.Location = &locationField{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		}
	}

	data, err := c.doJSON(http.MethodPost, models.PathChatSend, payload)
	if err != nil {
		return models.ChatEnvelope{}, err
	}

	return parseChatEnvelope(data)
}

// parseChatEnvelope extracts the envelope fields from a send response body.
func parseChatEnvelope(data []byte) (models.ChatEnvelope, error) {
	if !gjson.ValidBytes(data) {
		return models.ChatEnvelope{}, apierrors.NewParseError("response is not valid JSON", "")
	}

	root := gjson.ParseBytes(data)

	response := root.Get("response")
	if !response.Exists() {
		return models.ChatEnvelope{}, apierrors.NewParseError("missing response field", "response")
	}

	envelope := models.ChatEnvelope{
		SessionID: root.Get("session_id").String(),
		Response:  response.String(),
		// Bool() is false for absent, null, or non-boolean values, which is
		// exactly the safe default for the crisis flag.
		IsCrisis:        root.Get("is_crisis").Bool(),
		EmergencyNumber: root.Get("emergency_number").String(),
	}

	for _, qr := range root.Get("quick_replies").Array() {
		if s := qr.String(); s != "" {
			envelope.QuickReplies = append(envelope.QuickReplies, s)
		}
	}

	return envelope, nil
}
