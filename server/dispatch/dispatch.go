// Package dispatch holds the fan-out core shared by every send endpoint:
// attempt delivery per recipient, isolate failures, tally the outcomes.
package dispatch

import "fmt"

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Result is the terminal outcome of one recipient's delivery attempt.
// A recipient gets exactly one Result; there are no retries.
type Result struct {
	Recipient string
	Status    Status
	Fields    map[string]interface{}
}

func Success(recipient string, fields map[string]interface{}) Result {
	return Result{Recipient: recipient, Status: StatusSuccess, Fields: fields}
}

func Failure(recipient string, err error, fields map[string]interface{}) Result {
	detail := "Unknown error"
	if err != nil {
		detail = err.Error()
	}

	merged := map[string]interface{}{"error": detail}
	for k, v := range fields {
		merged[k] = v
	}

	return Result{Recipient: recipient, Status: StatusError, Fields: merged}
}

func Warning(recipient, note string, fields map[string]interface{}) Result {
	merged := map[string]interface{}{"message": note}
	for k, v := range fields {
		merged[k] = v
	}

	return Result{Recipient: recipient, Status: StatusWarning, Fields: merged}
}

func Info(recipient, note string, fields map[string]interface{}) Result {
	merged := map[string]interface{}{"message": note}
	for k, v := range fields {
		merged[k] = v
	}

	return Result{Recipient: recipient, Status: StatusInfo, Fields: merged}
}

// Each maps send over every recipient in order. send is expected to
// capture its own failure as a Result; Each never aborts the batch.
func Each(recipients []string, send func(recipient string) Result) []Result {
	results := make([]Result, 0, len(recipients))
	for _, recipient := range recipients {
		results = append(results, send(recipient))
	}

	return results
}

type Tally struct {
	Success int
	Error   int
	Warning int
	Info    int
}

func Count(results []Result) Tally {
	tally := Tally{}
	for _, result := range results {
		switch result.Status {
		case StatusSuccess:
			tally.Success++
		case StatusError:
			tally.Error++
		case StatusWarning:
			tally.Warning++
		case StatusInfo:
			tally.Info++
		}
	}

	return tally
}

// Summary composes the human line for the response payload,
// e.g. "SMS sent to 3 recipient(s), 1 failed".
func Summary(noun, unit string, tally Tally) string {
	msg := fmt.Sprintf("%s sent to %d %s(s)", noun, tally.Success, unit)
	if tally.Warning+tally.Info > 0 {
		msg += fmt.Sprintf(", %d without tokens", tally.Warning+tally.Info)
	}
	if tally.Error > 0 {
		msg += fmt.Sprintf(", %d failed", tally.Error)
	}

	return msg
}

// Payloads renders results for the response body, keying each record's
// recipient by the channel's field name ("phone", "contact", "token").
func Payloads(recipientKey string, results []Result) []map[string]interface{} {
	payloads := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		payload := map[string]interface{}{
			recipientKey: result.Recipient,
			"status":     result.Status,
		}
		for k, v := range result.Fields {
			payload[k] = v
		}
		payloads = append(payloads, payload)
	}

	return payloads
}
