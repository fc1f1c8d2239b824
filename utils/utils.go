package utils

import (
	"os"
	"strings"
)

// NormalizePhone strips everything but digits. An 11-digit number with a
// leading 1 (US country code) loses the 1; anything else is returned as-is.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	digits := sb.String()
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return digits[1:]
	}

	return digits
}

// NormalizeGateway lowercases, trims, and drops a single leading '@'.
func NormalizeGateway(gateway string) string {
	return strings.TrimPrefix(strings.TrimSpace(strings.ToLower(gateway)), "@")
}

// CleanText drops the literal "NaN" (an artifact of spreadsheet imports),
// swaps non-breaking spaces for regular ones, trims, and strips any byte
// outside printable ASCII.
func CleanText(text string) string {
	if text == "" || text == "NaN" {
		return ""
	}

	text = strings.TrimSpace(strings.ReplaceAll(text, " ", " "))

	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x20 && text[i] <= 0x7e {
			sb.WriteByte(text[i])
		}
	}

	return sb.String()
}

// GatewayEmail composes an SMS-to-email gateway address. A gateway that
// already carries an '@' is concatenated directly; otherwise one is
// inserted. No validation of the result.
func GatewayEmail(phone, gateway string) string {
	if strings.Contains(gateway, "@") {
		return phone + gateway
	}

	return phone + "@" + gateway
}

// FormatDisplayPhone groups a digit string for readability,
// e.g. "2345678901" -> "23 456 7890 1".
func FormatDisplayPhone(phone string) string {
	phone = strings.TrimPrefix(phone, "+")
	if len(phone) < 10 {
		return phone
	}

	rest := phone[9:]
	if len(rest) > 4 {
		rest = rest[:4]
	}

	groups := []string{phone[:2], phone[2:5], phone[5:9]}
	if rest != "" {
		groups = append(groups, rest)
	}

	return strings.Join(groups, " ")
}

func FileExist(filePath string) bool {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false
	}

	return true
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.Mkdir(dir, 0755)
	}

	return nil
}
