package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"+1 (234) 567-8901", "2345678901"},
		{"12345678901", "2345678901"},
		{"923370612601", "923370612601"},
		{"98765432109", "98765432109"},
		{"555-123-4567", "5551234567"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizePhone(tc.input), "input: %q", tc.input)
	}
}

func TestNormalizeGateway(t *testing.T) {
	assert.Equal(t, "vtext.com", NormalizeGateway("@VTEXT.com "))
	assert.Equal(t, "tmomail.net", NormalizeGateway("tmomail.net"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText("NaN"))
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "hllo", CleanText("héllo"))
	assert.Equal(t, "a b", CleanText("a b"))
	assert.Equal(t, "trimmed", CleanText("  trimmed  "))
}

func TestGatewayEmail(t *testing.T) {
	assert.Equal(t, "5551234567@vtext.com", GatewayEmail("5551234567", "vtext.com"))

	// a gateway already carrying '@' is concatenated without inserting another
	assert.Equal(t, "5551234567@vtext.com", GatewayEmail("5551234567", "@vtext.com"))
}

func TestFormatDisplayPhone(t *testing.T) {
	assert.Equal(t, "23 456 7890 1", FormatDisplayPhone("2345678901"))
	assert.Equal(t, "555123", FormatDisplayPhone("555123"))
}
