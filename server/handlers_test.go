package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/shared"
	"github.com/stretchr/testify/assert"
)

func newTestApp() *App {
	models.InitializeTestDb()
	return NewApp(&shared.ServerConfig{
		Herald: shared.HeraldConfig{
			SessionSecret: "test-secret",
			Listener:      shared.ListenerConfig{Port: 3001},
		},
	})
}

func doJSON(app *App, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	app.Router().ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	payload := map[string]interface{}{}
	assert.Nil(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func adminCookie(t *testing.T, app *App) *http.Cookie {
	err := models.CreateUser(&models.User{
		Email:    "admin@example.com",
		Password: "changeme",
		Role:     models.AdminUserRole,
	})
	assert.Nil(t, err)

	recorder := doJSON(app, "POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "changeme",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}

	t.Fatal("login response did not set a session cookie")
	return nil
}

func TestLogIn(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "POST", "/auth/login", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Email and password are required", decodeBody(t, recorder)["error"])

	assert.Nil(t, models.CreateUser(&models.User{Email: "admin@example.com", Password: "changeme"}))

	recorder = doJSON(app, "POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, recorder)["error"])

	recorder = doJSON(app, "POST", "/auth/login", map[string]string{
		"email":    "Admin@Example.com",
		"password": "changeme",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeBody(t, recorder)
	assert.Equal(t, true, payload["success"])
	assert.NotContains(t, recorder.Body.String(), "changeme")
}

func TestAdminGate(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "GET", "/users", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Unauthorized. Admin access required.", decodeBody(t, recorder)["error"])

	cookie := adminCookie(t, app)

	// basic users are gated out like anonymous ones
	assert.Nil(t, models.CreateUser(&models.User{Email: "member@example.com", Password: "changeme"}))
	memberLogin := doJSON(app, "POST", "/auth/login", map[string]string{
		"email":    "member@example.com",
		"password": "changeme",
	})
	assert.Equal(t, http.StatusOK, memberLogin.Code)

	recorder = doJSON(app, "GET", "/users", nil, memberLogin.Result().Cookies()[0])
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(app, "GET", "/users", nil, cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, decodeBody(t, recorder)["success"])
}

func TestCreateUserValidation(t *testing.T) {
	app := newTestApp()
	cookie := adminCookie(t, app)

	for _, tc := range []struct {
		body    map[string]string
		message string
	}{
		{map[string]string{"password": "changeme"}, "Email and password are required"},
		{map[string]string{"email": "a@b.com", "password": "short"}, "Password must be at least 6 characters"},
		{map[string]string{"email": "not-an-email", "password": "changeme"}, "Invalid email format"},
		{map[string]string{"email": "admin@example.com", "password": "changeme"}, "User with this email already exists"},
	} {
		recorder := doJSON(app, "POST", "/users", tc.body, cookie)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, tc.message, decodeBody(t, recorder)["error"])
	}

	recorder := doJSON(app, "POST", "/users", map[string]string{
		"email":    "new@example.com",
		"password": "changeme",
	}, cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeBody(t, recorder)
	assert.Equal(t, "User created successfully", payload["message"])
	assert.NotContains(t, recorder.Body.String(), "changeme")
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp()
	cookie := adminCookie(t, app)

	admin, err := models.FindUserBy("email", "admin@example.com")
	assert.Nil(t, err)

	recorder := doJSON(app, "DELETE", fmt.Sprintf("/users/%v", admin.ID), nil, cookie)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "You cannot delete your own account", decodeBody(t, recorder)["error"])

	recorder = doJSON(app, "DELETE", "/users/9999", nil, cookie)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "User not found", decodeBody(t, recorder)["error"])

	assert.Nil(t, models.CreateUser(&models.User{Email: "member@example.com", Password: "changeme"}))
	member, err := models.FindUserBy("email", "member@example.com")
	assert.Nil(t, err)

	recorder = doJSON(app, "DELETE", fmt.Sprintf("/users/%v", member.ID), nil, cookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "User deleted successfully", decodeBody(t, recorder)["message"])
}

func TestTwilioAccountEndpoints(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "GET", "/sms/accounts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeBody(t, recorder)
	assert.Equal(t,
		"No Twilio accounts found. Please add accounts to the database or configure environment variables.",
		payload["message"])

	recorder = doJSON(app, "POST", "/sms/accounts", map[string]string{
		"account_sid":   "AC123",
		"auth_token":    "secret-token",
		"twilio_number": "+15550001111",
		"sender_name":   "Main",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Twilio account added successfully", decodeBody(t, recorder)["message"])
	assert.NotContains(t, recorder.Body.String(), "secret-token")

	recorder = doJSON(app, "POST", "/sms/accounts", map[string]string{
		"account_sid":   "AC123",
		"auth_token":    "other-token",
		"twilio_number": "+15550002222",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Account with this SID already exists", decodeBody(t, recorder)["error"])

	recorder = doJSON(app, "GET", "/sms/accounts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "secret-token")
}

func TestTwilioAccountFallbackListing(t *testing.T) {
	models.InitializeTestDb()
	app := NewApp(&shared.ServerConfig{
		Herald: shared.HeraldConfig{SessionSecret: "test-secret", Listener: shared.ListenerConfig{Port: 3001}},
		Twilio: shared.TwilioConfig{
			AccountSid:  "AC999",
			AuthToken:   "env-token",
			PhoneNumber: "+15550009999",
		},
	})

	recorder := doJSON(app, "GET", "/sms/accounts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeBody(t, recorder)
	accounts := payload["accounts"].([]interface{})
	assert.Len(t, accounts, 1)

	entry := accounts[0].(map[string]interface{})
	assert.Equal(t, "default", entry["id"])
	assert.Equal(t, "Main Account", entry["sender_name"])
	assert.NotContains(t, recorder.Body.String(), "env-token")
}

func TestEmailAccountEndpoints(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "POST", "/push/accounts", map[string]string{
		"email":    "Alerts@Example.com",
		"password": "app-password",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Email account added successfully", decodeBody(t, recorder)["message"])

	recorder = doJSON(app, "POST", "/push/accounts", map[string]string{
		"email":    "alerts@example.com",
		"password": "other-password",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Account with this email already exists", decodeBody(t, recorder)["error"])

	recorder = doJSON(app, "GET", "/push/accounts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "app-password")
}

func TestContactEndpoints(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "POST", "/push/contacts", map[string]string{
		"phone_number":    "+1 (234) 567-8901",
		"carrier_gateway": "@VTEXT.com ",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Contact added successfully", decodeBody(t, recorder)["message"])

	recorder = doJSON(app, "GET", "/push/contacts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	contacts := decodeBody(t, recorder)["contacts"].([]interface{})
	assert.Len(t, contacts, 1)

	entry := contacts[0].(map[string]interface{})
	assert.Equal(t, "2345678901", entry["phone_number"])
	assert.Equal(t, "vtext.com", entry["carrier_gateway"])
	assert.Equal(t, "2345678901@vtext.com", entry["gateway_email"])
	assert.Equal(t, "23 456 7890 1", entry["display_phone"])
	assert.Equal(t, "2345678901", entry["displayName"])

	recorder = doJSON(app, "POST", "/push/contacts", map[string]string{"phone_number": "2345678901"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Phone number and carrier gateway are required", decodeBody(t, recorder)["error"])
}

func TestPushTokenEndpoints(t *testing.T) {
	app := newTestApp()

	longToken := strings.Repeat("x", 80)
	recorder := doJSON(app, "POST", "/push/register", map[string]string{
		"token":       longToken,
		"device_type": "android",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Push token registered successfully", decodeBody(t, recorder)["message"])

	recorder = doJSON(app, "GET", "/push/tokens", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeBody(t, recorder)
	assert.Equal(t, float64(1), payload["count"])

	entry := payload["tokens"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, longToken[:50]+"...", entry["token"])
	assert.Equal(t, "android", entry["device_type"])

	recorder = doJSON(app, "DELETE", "/push/register", map[string]string{"token": longToken})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Push token unregistered successfully", decodeBody(t, recorder)["message"])

	recorder = doJSON(app, "DELETE", "/push/register", map[string]string{"token": "unknown"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Push token not found", decodeBody(t, recorder)["error"])
}

func TestRegisterPhone(t *testing.T) {
	app := newTestApp()

	recorder := doJSON(app, "POST", "/push/register-phone", map[string]string{
		"phone_number": "+1 (234) 567-8901",
		"token":        "token-a",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Phone number mapped to push token successfully", decodeBody(t, recorder)["message"])

	// re-registering overwrites in place
	recorder = doJSON(app, "POST", "/push/register-phone", map[string]string{
		"phone_number": "2345678901",
		"token":        "token-b",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	count, err := models.CountPhoneMappings()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)
}
