package domain

import (
	"regexp"
	"strings"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// NormalizeE164 приводит номер к формату E.164
// Номер без "+" считается национальным и получает defaultCountryCode ("55").
// false - номер не удалось привести к валидному виду
func NormalizeE164(raw string, defaultCountryCode string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "whatsapp:")
	for _, sep := range []string{" ", "-", "(", ")", "."} {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}

	if cleaned == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
	case strings.HasPrefix(cleaned, "00"):
		cleaned = "+" + strings.TrimPrefix(cleaned, "00")
	default:
		cleaned = "+" + strings.TrimPrefix(defaultCountryCode, "+") + strings.TrimLeft(cleaned, "0")
	}

	if !e164Pattern.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}
