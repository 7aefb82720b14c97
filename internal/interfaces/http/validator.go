package http

import (
	"commercebot/internal/usecases"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxConfigKeyLength = 64
	MaxConfigValLength = 4096 // longest text body the send API accepts
	MaxWelcomeLength   = 1024 // welcome text is an interactive body
	MaxPrefillLength   = 256
	DefaultListLimit   = 50
	MaxListLimit       = 200
)

var (
	senderIDPattern  = regexp.MustCompile(`^[0-9]{6,20}$`)
	configKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ValidSenderID checks for an E.164 number without the plus sign, as the
// provider reports sender ids.
func ValidSenderID(s string) bool {
	return senderIDPattern.MatchString(s)
}

// MaxConfigValueLength returns the longest value accepted for key.
func MaxConfigValueLength(key string) int {
	if key == usecases.WelcomeMessageKey {
		return MaxWelcomeLength
	}
	return MaxConfigValLength
}

// ValidConfigKey checks if a config key is safe
func ValidConfigKey(s string) bool {
	if s == "" || len(s) > MaxConfigKeyLength {
		return false
	}
	return configKeyPattern.MatchString(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString cuts s to at most maxLen runes
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

// ValidateLength checks if the rune count is within bounds
func ValidateLength(s string, min, max int) bool {
	l := utf8.RuneCountInString(s)
	return l >= min && l <= max
}
