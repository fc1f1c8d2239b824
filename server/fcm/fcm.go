// Package fcm wraps the Firebase Admin SDK's messaging client for
// multicast push delivery.
package fcm

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// BatchSize is Firebase's hard limit on tokens per multicast call.
const BatchSize = 500

type Client struct {
	messaging *messaging.Client
}

// NewClient builds a messaging client from a service account key JSON blob.
func NewClient(ctx context.Context, serviceAccountJSON []byte) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(serviceAccountJSON))
	if err != nil {
		return nil, errors.Wrap(err, "firebase.NewApp")
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "app.Messaging")
	}

	return &Client{messaging: messagingClient}, nil
}

// SendResult is one token's outcome within a multicast batch.
type SendResult struct {
	Token     string
	MessageID string
	Err       error
}

// Multicast pushes the notification to every token, batching provider
// calls at the 500-token limit. A failed batch call marks each of its
// tokens failed; later batches still run.
func (c *Client) Multicast(ctx context.Context, title, body, imageURL string, tokens []string) []SendResult {
	results := make([]SendResult, 0, len(tokens))

	for start := 0; start < len(tokens); start += BatchSize {
		end := start + BatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		response, err := c.messaging.SendMulticast(ctx, multicastMessage(title, body, imageURL, batch))
		if err != nil {
			for _, token := range batch {
				results = append(results, SendResult{Token: token, Err: errors.Wrap(err, "batch send failed")})
			}
			continue
		}

		for i, sendResponse := range response.Responses {
			result := SendResult{Token: batch[i]}
			if sendResponse.Success {
				result.MessageID = sendResponse.MessageID
			} else {
				result.Err = sendResponse.Error
			}
			results = append(results, result)
		}
	}

	return results
}

func multicastMessage(title, body, imageURL string, tokens []string) *messaging.MulticastMessage {
	badge := 1

	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    title,
			Body:     body,
			ImageURL: imageURL,
		},
		Data: map[string]string{
			"click_action": "FLUTTER_NOTIFICATION_CLICK",
			"sound":        "default",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/icon-192x192.png",
				Badge: "/badge-72x72.png",
			},
		},
	}
}
