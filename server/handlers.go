package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/obiesoto/herald/server/auth"
	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/utils"
	"gorm.io/gorm"
)

const sessionCookieName = "token"

// ---------------------------------------------------------------------------------//
// Auth
// --------------------------------------------------------------------------------//

func (app *App) logIn(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.Email == "" || params.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := models.FindUserForLogin(strings.ToLower(params.Email))
	if err != nil || !auth.CheckPasswordHash(params.Password, user.Password) {
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := auth.EncodeSessionToken(
		fmt.Sprint(user.ID), user.Name, user.Role, []byte(app.config.Herald.SessionSecret))
	if err != nil {
		writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, map[string]interface{}{"success": true, "user": user}, http.StatusOK)
}

func (app *App) logOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, map[string]interface{}{"success": true, "message": "Logged out"}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Users
// --------------------------------------------------------------------------------//

func (app *App) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := models.AllUsers()
	if err != nil {
		writeError(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"success": true, "users": users}, http.StatusOK)
}

func (app *App) createUser(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.Email == "" || params.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	if len(params.Password) < 6 {
		writeError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	if err := validate.Var(params.Email, "email"); err != nil {
		writeError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	exists, err := models.UserExists(strings.ToLower(params.Email))
	if err != nil {
		writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	if exists {
		writeError(w, "User with this email already exists", http.StatusBadRequest)
		return
	}

	user := &models.User{
		Email:    params.Email,
		Password: params.Password,
		Name:     params.Name,
		Role:     params.Role,
	}
	if err := models.CreateUser(user); err != nil {
		writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"user":    user,
	}, http.StatusOK)
}

func (app *App) deleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := models.FindUserBy("id", vars["id"])
	if err != nil {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	if user.ID == currentUserID(r) {
		writeError(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}

	if err := models.DeleteUser(user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, "User not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to delete user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"success": true, "message": "User deleted successfully"}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Twilio accounts
// --------------------------------------------------------------------------------//

func (app *App) listTwilioAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := models.ActiveTwilioAccounts()
	if err != nil {
		writeError(w, "Failed to fetch accounts", http.StatusInternalServerError)
		return
	}

	entries := []map[string]interface{}{}
	for _, account := range accounts {
		entries = append(entries, map[string]interface{}{
			"id":            account.ID,
			"account_sid":   account.AccountSid,
			"twilio_number": account.TwilioNumber,
			"sender_name":   account.SenderName,
		})
	}

	if len(entries) == 0 && app.twilioFallback != nil {
		entries = append(entries, map[string]interface{}{
			"id":            "default",
			"account_sid":   app.twilioFallback.AccountSid,
			"twilio_number": app.twilioFallback.PhoneNumber,
			"sender_name":   app.twilioFallback.FriendlyName,
		})
	}

	payload := map[string]interface{}{"success": true, "accounts": entries}
	if len(entries) == 0 {
		payload["message"] = "No Twilio accounts found. Please add accounts to the database or configure environment variables."
	}

	writeJSON(w, payload, http.StatusOK)
}

func (app *App) createTwilioAccount(w http.ResponseWriter, r *http.Request) {
	params := struct {
		AccountSid   string `json:"account_sid"`
		AuthToken    string `json:"auth_token"`
		TwilioNumber string `json:"twilio_number"`
		SenderName   string `json:"sender_name"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.AccountSid == "" || params.AuthToken == "" || params.TwilioNumber == "" {
		writeError(w, "Account SID, auth token and phone number are required", http.StatusBadRequest)
		return
	}

	exists, err := models.TwilioAccountExists(params.AccountSid)
	if err != nil {
		writeError(w, "Failed to add Twilio account", http.StatusInternalServerError)
		return
	}
	if exists {
		writeError(w, "Account with this SID already exists", http.StatusBadRequest)
		return
	}

	senderName := params.SenderName
	if senderName == "" {
		senderName = "Twilio"
	}

	account := &models.TwilioAccount{
		AccountSid:   params.AccountSid,
		AuthToken:    params.AuthToken,
		TwilioNumber: params.TwilioNumber,
		SenderName:   senderName,
	}
	if err := models.CreateTwilioAccount(account); err != nil {
		writeError(w, "Failed to add Twilio account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Twilio account added successfully",
		"account": map[string]interface{}{
			"id":            account.ID,
			"account_sid":   account.AccountSid,
			"twilio_number": account.TwilioNumber,
			"sender_name":   account.SenderName,
		},
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Email accounts
// --------------------------------------------------------------------------------//

func (app *App) listEmailAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := models.ActiveEmailAccounts()
	if err != nil {
		writeError(w, "Failed to fetch accounts", http.StatusInternalServerError)
		return
	}

	payload := map[string]interface{}{"success": true, "accounts": accounts}
	if len(accounts) == 0 {
		payload["message"] = "No email accounts found. Please add accounts to the database."
	}

	writeJSON(w, payload, http.StatusOK)
}

func (app *App) createEmailAccount(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		FriendlyName string `json:"friendlyName"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.Email == "" || params.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	if err := validate.Var(params.Email, "email"); err != nil {
		writeError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	exists, err := models.EmailAccountExists(strings.ToLower(params.Email))
	if err != nil {
		writeError(w, "Failed to add email account", http.StatusInternalServerError)
		return
	}
	if exists {
		writeError(w, "Account with this email already exists", http.StatusBadRequest)
		return
	}

	friendlyName := params.FriendlyName
	if friendlyName == "" {
		friendlyName = strings.Split(strings.ToLower(params.Email), "@")[0]
	}

	account := &models.EmailAccount{
		Email:        params.Email,
		Password:     params.Password,
		FriendlyName: friendlyName,
	}
	if err := models.CreateEmailAccount(account); err != nil {
		writeError(w, "Failed to add email account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Email account added successfully",
		"account": account,
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contacts
// --------------------------------------------------------------------------------//

func (app *App) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := models.ActiveContacts()
	if err != nil {
		writeError(w, "Failed to fetch contacts", http.StatusInternalServerError)
		return
	}

	// Rows predating the write-side normalization may still carry raw
	// values, so normalize again on the way out.
	entries := []map[string]interface{}{}
	for _, contact := range contacts {
		phone := utils.NormalizePhone(utils.CleanText(contact.PhoneNumber))
		gateway := utils.NormalizeGateway(utils.CleanText(contact.CarrierGateway))

		displayName := utils.CleanText(contact.DisplayName)
		if displayName == "" {
			displayName = phone
		}

		entries = append(entries, map[string]interface{}{
			"id":              contact.ID,
			"phone_number":    phone,
			"carrier_gateway": gateway,
			"gateway_email":   utils.GatewayEmail(phone, gateway),
			"display_phone":   utils.FormatDisplayPhone(phone),
			"displayName":     displayName,
		})
	}

	writeJSON(w, map[string]interface{}{"success": true, "contacts": entries}, http.StatusOK)
}

func (app *App) createContact(w http.ResponseWriter, r *http.Request) {
	params := struct {
		PhoneNumber    string `json:"phone_number"`
		CarrierGateway string `json:"carrier_gateway"`
		DisplayName    string `json:"display_name"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone := utils.NormalizePhone(params.PhoneNumber)
	gateway := utils.NormalizeGateway(params.CarrierGateway)
	if phone == "" || gateway == "" {
		writeError(w, "Phone number and carrier gateway are required", http.StatusBadRequest)
		return
	}

	displayName := utils.CleanText(params.DisplayName)
	if displayName == "" {
		displayName = phone
	}

	contact := &models.Contact{
		PhoneNumber:    phone,
		CarrierGateway: gateway,
		DisplayName:    displayName,
	}
	if err := models.CreateContact(contact); err != nil {
		writeError(w, "Failed to add contact", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Contact added successfully",
		"contact": contact,
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Push tokens
// --------------------------------------------------------------------------------//

func (app *App) listPushTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := models.ActivePushTokens()
	if err != nil {
		writeError(w, "Failed to fetch push tokens", http.StatusInternalServerError)
		return
	}

	entries := []map[string]interface{}{}
	for _, token := range tokens {
		display := token.Token
		if len(display) > 50 {
			display = display[:50] + "..."
		}

		entry := map[string]interface{}{
			"id":          token.ID,
			"token":       display,
			"device_type": token.DeviceType,
			"device_info": token.DeviceInfo,
			"created_at":  token.CreatedAt,
		}
		if token.User != nil {
			entry["user"] = map[string]interface{}{
				"id":    token.User.ID,
				"name":  token.User.Name,
				"email": token.User.Email,
			}
		}
		entries = append(entries, entry)
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"count":   len(entries),
		"tokens":  entries,
	}, http.StatusOK)
}

func (app *App) registerPushToken(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Token      string `json:"token"`
		DeviceType string `json:"device_type"`
		DeviceInfo string `json:"device_info"`
		UserID     *uint  `json:"user_id"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.Token == "" {
		writeError(w, "Push token is required", http.StatusBadRequest)
		return
	}

	token, err := models.UpsertPushToken(params.Token, params.DeviceType, params.DeviceInfo, params.UserID)
	if err != nil {
		writeError(w, "Failed to register push token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Push token registered successfully",
		"id":      token.ID,
	}, http.StatusOK)
}

func (app *App) unregisterPushToken(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Token string `json:"token"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if params.Token == "" {
		writeError(w, "Push token is required", http.StatusBadRequest)
		return
	}

	if err := models.DeactivatePushToken(params.Token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, "Push token not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to unregister push token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Push token unregistered successfully",
	}, http.StatusOK)
}

func (app *App) registerPhone(w http.ResponseWriter, r *http.Request) {
	params := struct {
		PhoneNumber string `json:"phone_number"`
		Token       string `json:"token"`
		DeviceType  string `json:"device_type"`
		UserID      *uint  `json:"user_id"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	phone := utils.NormalizePhone(params.PhoneNumber)
	if phone == "" || params.Token == "" {
		writeError(w, "Phone number and push token are required", http.StatusBadRequest)
		return
	}

	if _, err := models.UpsertPhoneMapping(phone, params.Token, params.DeviceType, params.UserID); err != nil {
		writeError(w, "Failed to map phone number", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Phone number mapped to push token successfully",
	}, http.StatusOK)
}
