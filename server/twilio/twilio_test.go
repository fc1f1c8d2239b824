package twilio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+2345678901", FormatPhone("234 567 8901"))
	assert.Equal(t, "+1 234", FormatPhone("+1 234"), "existing '+' leaves the number untouched")
	assert.Equal(t, "+15551234567", FormatPhone("15551234567"))
}
