// Package i18n provides internationalization support for user-facing messages
package i18n

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLanguage is the fallback language when no translation is available
	DefaultLanguage = "en"
	// SpanishMessages is the Spanish translation
	SpanishMessages = "es"
)

// Localizer provides translation functionality
type Localizer struct {
	language string
	messages map[string]string
}

// NewLocalizer creates a new localizer for the specified language
func NewLocalizer(language string) *Localizer {
	if !IsSupported(language) {
		language = DefaultLanguage
	}
	return &Localizer{
		language: language,
		messages: getMessages(language),
	}
}

// Language returns the active language code.
func (l *Localizer) Language() string {
	return l.language
}

// T translates a message key. Messages holding "{0}" style placeholders are
// filled with TemplateReplace, the rest with fmt.Sprintf.
func (l *Localizer) T(key string, args ...any) string {
	if message, exists := l.messages[key]; exists {
		return format(message, args)
	}

	// Fallback to English if key not found in current language
	if l.language != DefaultLanguage {
		if fallbackMessage, exists := getMessages(DefaultLanguage)[key]; exists {
			return format(fallbackMessage, args)
		}
	}

	// Ultimate fallback: return the key itself
	return key
}

func format(message string, args []any) string {
	if len(args) == 0 {
		return message
	}
	if strings.Contains(message, "{0}") {
		return TemplateReplace(message, args...)
	}
	return fmt.Sprintf(message, args...)
}

// TemplateReplace replaces "{n}" with the n-th argument. Placeholders
// without an argument are left as they are.
func TemplateReplace(template string, args ...any) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(args))
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// GetSupportedLanguages returns list of supported language codes
func GetSupportedLanguages() []string {
	return []string{DefaultLanguage, SpanishMessages}
}

// IsSupported reports whether language has a translation.
func IsSupported(language string) bool {
	for _, supported := range GetSupportedLanguages() {
		if supported == language {
			return true
		}
	}
	return false
}

// getMessages returns the message map for a given language
func getMessages(language string) map[string]string {
	switch language {
	case DefaultLanguage:
		return englishMessages
	case SpanishMessages:
		return spanishMessages
	default:
		return englishMessages // Default to English
	}
}
