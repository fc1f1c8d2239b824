package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEachIsolatesFailures(t *testing.T) {
	recipients := []string{"a", "b", "c", "d"}

	results := Each(recipients, func(recipient string) Result {
		if recipient == "b" || recipient == "d" {
			return Failure(recipient, errors.New("unreachable"), nil)
		}
		return Success(recipient, map[string]interface{}{"sid": "SM" + recipient})
	})

	assert.Len(t, results, len(recipients), "every recipient gets exactly one result")

	tally := Count(results)
	assert.Equal(t, 2, tally.Success)
	assert.Equal(t, 2, tally.Error)
	assert.Equal(t, len(recipients), tally.Success+tally.Error)
}

func TestCountIncludesWarningsAndInfo(t *testing.T) {
	results := []Result{
		Success("a", nil),
		Warning("b", "No push token registered for this number", nil),
		Info("c", "No push token found, SMS sent instead", nil),
		Failure("d", nil, nil),
	}

	tally := Count(results)
	assert.Equal(t, Tally{Success: 1, Error: 1, Warning: 1, Info: 1}, tally)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "SMS sent to 3 recipient(s)", Summary("SMS", "recipient", Tally{Success: 3}))
	assert.Equal(t, "SMS sent to 3 recipient(s), 1 failed", Summary("SMS", "recipient", Tally{Success: 3, Error: 1}))
	assert.Equal(t,
		"Push notifications sent to 2 number(s), 1 without tokens, 1 failed",
		Summary("Push notifications", "number", Tally{Success: 2, Warning: 1, Error: 1}))
}

func TestPayloads(t *testing.T) {
	results := []Result{
		Success("2345678901", map[string]interface{}{"sid": "SM1"}),
		Failure("5551234567", errors.New("blocked"), nil),
	}

	payloads := Payloads("phone", results)
	assert.Len(t, payloads, 2)
	assert.Equal(t, "2345678901", payloads[0]["phone"])
	assert.Equal(t, StatusSuccess, payloads[0]["status"])
	assert.Equal(t, "SM1", payloads[0]["sid"])
	assert.Equal(t, "blocked", payloads[1]["error"])
}
