// Package onesignal is a thin client for OneSignal's create-notification
// REST endpoint - the only call this system makes against the provider.
package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://onesignal.com"

type Client struct {
	appID      string
	restAPIKey string
	baseURL    string
	httpClient *http.Client
}

func NewClient(appID, restAPIKey string) *Client {
	return &Client{
		appID:      appID,
		restAPIKey: restAPIKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Notification mirrors the subset of OneSignal's notification schema the
// dashboard uses. AppID is filled in by the client.
type Notification struct {
	AppID            string            `json:"app_id"`
	Headings         map[string]string `json:"headings,omitempty"`
	Contents         map[string]string `json:"contents,omitempty"`
	IncludedSegments []string          `json:"included_segments,omitempty"`
	IncludePlayerIDs []string          `json:"include_player_ids,omitempty"`
	Filters          []Filter          `json:"filters,omitempty"`
	BigPicture       string            `json:"big_picture,omitempty"`
	LargeIcon        string            `json:"large_icon,omitempty"`
	SmallIcon        string            `json:"small_icon,omitempty"`
	AndroidChannelID string            `json:"android_channel_id,omitempty"`
}

// Filter is a OneSignal audience filter, used for external-id tag targeting.
type Filter struct {
	Field    string `json:"field"`
	Key      string `json:"key,omitempty"`
	Relation string `json:"relation"`
	Value    string `json:"value"`
}

type CreateNotificationResponse struct {
	ID         string      `json:"id"`
	Recipients int         `json:"recipients"`
	Errors     interface{} `json:"errors,omitempty"`
}

// CreateNotification posts the notification and returns the provider's
// receipt. Provider-side rejections surface as errors even on HTTP 200,
// since OneSignal reports them in the body.
func (c *Client) CreateNotification(ctx context.Context, notification *Notification) (*CreateNotificationResponse, error) {
	notification.AppID = c.appID

	payload, err := json.Marshal(notification)
	if err != nil {
		return nil, errors.Wrap(err, "marshal notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/notifications", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.restAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "onesignal request failed")
	}
	defer resp.Body.Close()

	response := CreateNotificationResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "decode onesignal response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("onesignal responded %d: %v", resp.StatusCode, response.Errors)
	}

	if response.ID == "" && response.Errors != nil {
		return nil, fmt.Errorf("onesignal rejected notification: %v", response.Errors)
	}

	return &response, nil
}
