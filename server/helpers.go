package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

func writeJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logg.Error(err)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	if statusCode >= 500 {
		logg.Error(message)
	} else {
		logg.Info(message)
	}
	writeJSON(w, map[string]interface{}{"error": message}, statusCode)
}

func writeErrorWithDetails(w http.ResponseWriter, message, details string, statusCode int) {
	if statusCode >= 500 {
		logg.Errorf("%v: %v", message, details)
	} else {
		logg.Infof("%v: %v", message, details)
	}
	writeJSON(w, map[string]interface{}{"error": message, "details": details}, statusCode)
}

// splitList breaks a comma separated field into its non-empty parts.
// Values are passed through as-is; normalization happens downstream per
// channel.
func splitList(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// PhoneList accepts either a JSON array of strings or a single comma
// separated string, so callers can post numbers in whichever shape
// their client produces.
type PhoneList []string

func (p *PhoneList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = splitList(single)
	return nil
}
