package imghost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47}

	testServer := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.Nil(t, r.ParseForm())
		assert.Equal(t, "/1/upload", r.URL.Path)
		assert.Equal(t, "test-key", r.FormValue("key"))
		assert.Equal(t, base64.StdEncoding.EncodeToString(imageBytes), r.FormValue("image"))

		// plain-http URL in the response must come back as https
		json.NewEncoder(rw).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"url":   "http://i.ibb.co/abc/fallback.png",
				"image": map[string]interface{}{"url": "http://i.ibb.co/abc/direct.png"},
			},
		})
	}))
	defer testServer.Close()

	client := NewClient("test-key")
	client.baseURL = testServer.URL

	hostedURL, err := client.Upload(context.Background(), imageBytes)
	require.Nil(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/direct.png", hostedURL)
}

func TestUploadFailure(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(rw).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]interface{}{"message": "Invalid API key"},
		})
	}))
	defer testServer.Close()

	client := NewClient("bad-key")
	client.baseURL = testServer.URL

	_, err := client.Upload(context.Background(), []byte("x"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
