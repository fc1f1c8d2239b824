// Package imghost uploads images to ImgBB and returns their public HTTPS
// URLs, which Twilio needs to fetch MMS media.
package imghost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.imgbb.com"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL   string `json:"url"`
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image bytes and returns the hosted URL, forced to
// https since Twilio refuses plain http media.
func (c *Client) Upload(ctx context.Context, data []byte) (string, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", base64.StdEncoding.EncodeToString(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1/upload", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "imgbb request failed")
	}
	defer resp.Body.Close()

	response := uploadResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", errors.Wrap(err, "decode imgbb response")
	}

	if resp.StatusCode != http.StatusOK || !response.Success {
		message := response.Error.Message
		if message == "" {
			message = "upload failed"
		}
		return "", errors.Errorf("imgbb: %s", message)
	}

	imageURL := response.Data.Image.URL
	if imageURL == "" {
		imageURL = response.Data.URL
	}
	if imageURL == "" {
		return "", errors.New("imgbb: no image URL in response")
	}

	return strings.Replace(imageURL, "http://", "https://", 1), nil
}
