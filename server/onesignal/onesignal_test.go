package onesignal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotification(t *testing.T) {
	var received Notification

	testServer := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications", r.URL.Path)
		assert.Equal(t, "Basic test-key", r.Header.Get("Authorization"))

		err := json.NewDecoder(r.Body).Decode(&received)
		require.Nil(t, err)

		json.NewEncoder(rw).Encode(CreateNotificationResponse{ID: "notif-1", Recipients: 3})
	}))
	defer testServer.Close()

	client := NewClient("app-1", "test-key")
	client.baseURL = testServer.URL

	response, err := client.CreateNotification(context.Background(), &Notification{
		Headings:         map[string]string{"en": "Title"},
		Contents:         map[string]string{"en": "Body"},
		IncludePlayerIDs: []string{"p1", "p2", "p3"},
	})
	require.Nil(t, err)

	assert.Equal(t, "notif-1", response.ID)
	assert.Equal(t, 3, response.Recipients)
	assert.Equal(t, "app-1", received.AppID, "client must stamp its app id onto the payload")
	assert.Equal(t, []string{"p1", "p2", "p3"}, received.IncludePlayerIDs)
}

func TestCreateNotificationProviderRejection(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(rw).Encode(map[string]interface{}{"errors": []string{"app_id not found"}})
	}))
	defer testServer.Close()

	client := NewClient("app-1", "test-key")
	client.baseURL = testServer.URL

	_, err := client.CreateNotification(context.Background(), &Notification{})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "app_id not found")
}
