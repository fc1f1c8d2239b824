package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/obiesoto/herald/server/dispatch"
	"github.com/obiesoto/herald/server/mailer"
	"github.com/obiesoto/herald/server/models"
	"github.com/obiesoto/herald/server/onesignal"
	"github.com/obiesoto/herald/server/senders"
	"github.com/obiesoto/herald/server/twilio"
	"github.com/obiesoto/herald/utils"
)

const (
	maxUploadBytes   = 5 << 20
	defaultPushTitle = "Notification"
)

// resolveTwilioSender maps the request's sender field to a Twilio client,
// writing the appropriate error response itself when resolution fails.
func (app *App) resolveTwilioSender(w http.ResponseWriter, sender, failureMsg string) twilioSender {
	credential, err := senders.Resolve(sender, app.twilioFallback)
	if errors.Is(err, senders.ErrInvalidCredential) {
		writeError(w, "Invalid Twilio account configuration", http.StatusBadRequest)
		return nil
	}
	if errors.Is(err, senders.ErrNotFound) {
		writeError(w, "Twilio account not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		writeErrorWithDetails(w, failureMsg, err.Error(), http.StatusInternalServerError)
		return nil
	}

	return newTwilioClient(credential)
}

func batchPayload(summary, recipientKey string, results []dispatch.Result, tally dispatch.Tally) map[string]interface{} {
	payload := map[string]interface{}{
		"success":      true,
		"message":      summary,
		"results":      dispatch.Payloads(recipientKey, results),
		"successCount": tally.Success,
		"errorCount":   tally.Error,
	}
	if tally.Warning > 0 || tally.Info > 0 {
		payload["warningCount"] = tally.Warning + tally.Info
	}

	return payload
}

// ---------------------------------------------------------------------------------//
// SMS / MMS
// --------------------------------------------------------------------------------//

func (app *App) sendSMS(w http.ResponseWriter, r *http.Request) {
	params := struct {
		Message        string    `json:"message"`
		SelectedPhones PhoneList `json:"selectedPhones"`
		Sender         string    `json:"sender"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	message := utils.CleanText(params.Message)
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	if len(params.SelectedPhones) == 0 {
		writeError(w, "At least one recipient is required", http.StatusBadRequest)
		return
	}

	if params.Sender == "" {
		writeError(w, "Twilio account is required", http.StatusBadRequest)
		return
	}

	client := app.resolveTwilioSender(w, params.Sender, "Failed to send SMS")
	if client == nil {
		return
	}

	results := dispatch.Each(params.SelectedPhones, func(phone string) dispatch.Result {
		sid, err := client.SendSMS(twilio.FormatPhone(phone), message)
		if err != nil {
			return dispatch.Failure(phone, err, nil)
		}
		return dispatch.Success(phone, map[string]interface{}{"sid": sid})
	})

	tally := dispatch.Observe("sms", results)
	writeJSON(w, batchPayload(
		dispatch.Summary("SMS", "recipient", tally), "phone", results, tally), http.StatusOK)
}

func (app *App) sendMMS(w http.ResponseWriter, r *http.Request) {
	message := utils.CleanText(r.FormValue("message"))
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	phones := splitList(r.FormValue("selected_phones"))
	if len(phones) == 0 {
		writeError(w, "At least one phone number is required", http.StatusBadRequest)
		return
	}

	sender := r.FormValue("sender")
	if sender == "" {
		writeError(w, "Twilio account is required", http.StatusBadRequest)
		return
	}

	imageURL := strings.TrimSpace(r.FormValue("image_url"))
	if imageURL == "" {
		writeError(w, "Image URL is required for MMS", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(imageURL, "https://") {
		writeError(w, "Image URL must use HTTPS. Twilio requires secure URLs for MMS.", http.StatusBadRequest)
		return
	}
	if strings.Contains(imageURL, "localhost") || strings.Contains(imageURL, "127.0.0.1") {
		writeError(w, "Image URL must be publicly accessible. Localhost URLs cannot be accessed by Twilio.", http.StatusBadRequest)
		return
	}

	checkImageReachable(imageURL)

	client := app.resolveTwilioSender(w, sender, "Failed to send MMS")
	if client == nil {
		return
	}

	results := dispatch.Each(phones, func(phone string) dispatch.Result {
		sid, err := client.SendMMS(twilio.FormatPhone(phone), message, imageURL)
		if err != nil {
			return dispatch.Failure(phone, err, nil)
		}
		return dispatch.Success(phone, map[string]interface{}{"sid": sid})
	})

	tally := dispatch.Observe("mms", results)
	writeJSON(w, batchPayload(
		dispatch.Summary("MMS", "recipient", tally), "phone", results, tally), http.StatusOK)
}

// checkImageReachable probes the media URL the way Twilio will fetch it.
// Failures only warn; carriers sometimes block HEAD while serving GET fine.
var checkImageReachable = func(imageURL string) {
	req, err := http.NewRequest(http.MethodHead, imageURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logg.Warnf("media URL unreachable: %v", err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		logg.Warnf("media URL returned %v: %v", resp.StatusCode, imageURL)
	}
}

// ---------------------------------------------------------------------------------//
// Email (SMS-to-email gateways)
// --------------------------------------------------------------------------------//

func (app *App) sendEmail(w http.ResponseWriter, r *http.Request) {
	message := utils.CleanText(r.FormValue("message"))
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	contacts := splitList(r.FormValue("selected_contacts"))
	if len(contacts) == 0 {
		writeError(w, "At least one recipient is required", http.StatusBadRequest)
		return
	}

	senderID := r.FormValue("sender")
	if senderID == "" {
		writeError(w, "Email account is required", http.StatusBadRequest)
		return
	}

	account, err := models.FindEmailAccount(senderID)
	if err != nil {
		writeError(w, "Email account not found", http.StatusNotFound)
		return
	}

	mail := newMailSender(app.config.Smtp.Host, app.config.Smtp.Port, account.Email, account.Password)
	if err := mail.Verify(); err != nil {
		writeError(w, "Failed to connect to email server. Please check your credentials.", http.StatusInternalServerError)
		return
	}

	attachment := readAttachment(r)

	results := dispatch.Each(contacts, func(contact string) dispatch.Result {
		if err := mail.Send(contact, defaultPushTitle, message, attachment); err != nil {
			return dispatch.Failure(contact, err, nil)
		}
		return dispatch.Success(contact, nil)
	})

	tally := dispatch.Observe("email", results)
	writeJSON(w, batchPayload(
		dispatch.Summary("Push notification", "recipient", tally), "contact", results, tally), http.StatusOK)
}

func readAttachment(r *http.Request) *mailer.Attachment {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logg.Warnf("attachment read failed: %v", err)
		return nil
	}

	return &mailer.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
}

// ---------------------------------------------------------------------------------//
// Push (FCM / OneSignal)
// --------------------------------------------------------------------------------//

func (app *App) sendFCM(w http.ResponseWriter, r *http.Request) {
	if app.fcm == nil {
		writeError(w, "Firebase not configured. Please set FIREBASE_SERVICE_ACCOUNT environment variable.", http.StatusInternalServerError)
		return
	}

	message := utils.CleanText(r.FormValue("message"))
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	title := utils.CleanText(r.FormValue("title"))
	if title == "" {
		title = defaultPushTitle
	}

	var tokens []string
	if r.FormValue("send_to_all") == "true" {
		active, err := models.ActivePushTokens()
		if err != nil {
			writeErrorWithDetails(w, "Failed to send push notifications", err.Error(), http.StatusInternalServerError)
			return
		}
		for _, t := range active {
			tokens = append(tokens, t.Token)
		}
		if len(tokens) == 0 {
			writeError(w, "No active push tokens found", http.StatusBadRequest)
			return
		}
	} else {
		tokens = splitList(r.FormValue("selected_tokens"))
		if len(tokens) == 0 {
			writeError(w, "Please select recipients or choose send to all", http.StatusBadRequest)
			return
		}
	}

	sendResults := app.fcm.Multicast(r.Context(), title, message, r.FormValue("image_url"), tokens)

	results := make([]dispatch.Result, 0, len(sendResults))
	for _, res := range sendResults {
		if res.Err != nil {
			results = append(results, dispatch.Failure(res.Token, res.Err, nil))
			continue
		}
		results = append(results, dispatch.Success(res.Token, map[string]interface{}{"messageId": res.MessageID}))
	}

	tally := dispatch.Observe("fcm", results)
	writeJSON(w, batchPayload(
		dispatch.Summary("Push notification", "device", tally), "token", results, tally), http.StatusOK)
}

func (app *App) sendOneSignal(w http.ResponseWriter, r *http.Request) {
	if app.onesignal == nil {
		writeError(w, "OneSignal not configured. Please set ONESIGNAL_APP_ID and ONESIGNAL_REST_API_KEY environment variables.", http.StatusInternalServerError)
		return
	}

	message := utils.CleanText(r.FormValue("message"))
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	title := utils.CleanText(r.FormValue("title"))
	if title == "" {
		title = defaultPushTitle
	}

	notification := &onesignal.Notification{
		Headings:         map[string]string{"en": title},
		Contents:         map[string]string{"en": message},
		AndroidChannelID: "default",
		SmallIcon:        "ic_notification",
	}
	applyTargeting(notification, r)

	resp, err := app.onesignal.CreateNotification(r.Context(), notification)
	if err != nil {
		writeErrorWithDetails(w, "Failed to send push notification", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success":    true,
		"message":    "Push notification sent successfully!",
		"id":         resp.ID,
		"recipients": resp.Recipients,
	}, http.StatusOK)
}

// applyTargeting picks exactly one audience in priority order: everyone,
// explicit player ids, external-id tags, a named segment, then everyone
// again as the fallback.
func applyTargeting(notification *onesignal.Notification, r *http.Request) {
	if r.FormValue("send_to_all") == "true" {
		notification.IncludedSegments = []string{"All"}
		return
	}

	if playerIDs := splitList(r.FormValue("user_ids")); len(playerIDs) > 0 {
		notification.IncludePlayerIDs = playerIDs
		return
	}

	if externalIDs := splitList(r.FormValue("external_ids")); len(externalIDs) > 0 {
		filters := make([]onesignal.Filter, 0, len(externalIDs))
		for _, id := range externalIDs {
			filters = append(filters, onesignal.Filter{
				Field:    "tag",
				Key:      "user_id",
				Relation: "=",
				Value:    strings.TrimSpace(id),
			})
		}
		notification.Filters = filters
		return
	}

	if segment := strings.TrimSpace(r.FormValue("segment")); segment != "" {
		notification.IncludedSegments = []string{segment}
		return
	}

	notification.IncludedSegments = []string{"All"}
}

func (app *App) sendByPhone(w http.ResponseWriter, r *http.Request) {
	if app.onesignal == nil {
		writeError(w, "OneSignal not configured. Please set ONESIGNAL_APP_ID and ONESIGNAL_REST_API_KEY environment variables.", http.StatusInternalServerError)
		return
	}

	message := utils.CleanText(r.FormValue("message"))
	if message == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	title := utils.CleanText(r.FormValue("title"))
	if title == "" {
		title = defaultPushTitle
	}

	phones := []string{}
	for _, phone := range splitList(r.FormValue("selected_phones")) {
		if normalized := utils.NormalizePhone(phone); normalized != "" {
			phones = append(phones, normalized)
		}
	}
	if len(phones) == 0 {
		writeError(w, "At least one phone number is required", http.StatusBadRequest)
		return
	}

	mappings, err := models.ActiveMappingsForPhones(phones)
	if err != nil {
		writeErrorWithDetails(w, "Failed to send push notifications", err.Error(), http.StatusInternalServerError)
		return
	}

	tokenByPhone := map[string]string{}
	for _, mapping := range mappings {
		tokenByPhone[mapping.PhoneNumber] = mapping.PushToken
	}

	tokens := []string{}
	for _, phone := range phones {
		if token, ok := tokenByPhone[phone]; ok {
			tokens = append(tokens, token)
		}
	}

	// Every token-backed phone rides the same OneSignal call, so they all
	// share its outcome.
	var pushID string
	var pushErr error
	if len(tokens) > 0 {
		resp, err := app.onesignal.CreateNotification(r.Context(), &onesignal.Notification{
			Headings:         map[string]string{"en": title},
			Contents:         map[string]string{"en": message},
			IncludePlayerIDs: tokens,
			AndroidChannelID: "default",
		})
		if err != nil {
			pushErr = err
		} else {
			pushID = resp.ID
		}
	}

	smsFallback := r.FormValue("send_sms_fallback") == "true"

	results := dispatch.Each(phones, func(phone string) dispatch.Result {
		if _, ok := tokenByPhone[phone]; ok {
			if pushErr != nil {
				return dispatch.Failure(phone, pushErr, map[string]interface{}{"method": "push"})
			}
			return dispatch.Success(phone, map[string]interface{}{"method": "push", "messageId": pushID})
		}

		if smsFallback {
			return dispatch.Info(phone, "No push token found, SMS sent instead",
				map[string]interface{}{"method": "sms_fallback"})
		}
		return dispatch.Warning(phone, "No push token registered for this number",
			map[string]interface{}{"method": "none"})
	})

	tally := dispatch.Observe("push_by_phone", results)
	writeJSON(w, batchPayload(
		dispatch.Summary("Push notifications", "number", tally), "phone", results, tally), http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Image upload
// --------------------------------------------------------------------------------//

func (app *App) uploadImage(w http.ResponseWriter, r *http.Request) {
	if app.imageHost == nil {
		writeError(w, "Image host not configured. Please set IMGBB_API_KEY environment variable.", http.StatusInternalServerError)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "Image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, "Invalid image file type", http.StatusBadRequest)
		return
	}

	if header.Size > maxUploadBytes {
		writeError(w, "Image size must be less than 5MB", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorWithDetails(w, "Failed to upload image", err.Error(), http.StatusInternalServerError)
		return
	}

	url, err := app.imageHost.Upload(r.Context(), data)
	if err != nil {
		writeErrorWithDetails(w, "Failed to upload image", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"success": true, "url": url}, http.StatusOK)
}
