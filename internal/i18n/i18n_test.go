package i18n

import (
	"strings"
	"testing"
)

func TestEveryLanguageHasEveryKey(t *testing.T) {
	reference := getMessages(DefaultLanguage)
	if len(reference) == 0 {
		t.Fatal("no messages in the default language")
	}

	for _, lang := range GetSupportedLanguages() {
		t.Run(lang, func(t *testing.T) {
			messages := getMessages(lang)
			for key := range reference {
				if _, ok := messages[key]; !ok {
					t.Errorf("language %s is missing key %q", lang, key)
				}
			}
			for key := range messages {
				if _, ok := reference[key]; !ok {
					t.Errorf("language %s has key %q unknown to %s", lang, key, DefaultLanguage)
				}
			}
		})
	}
}

func TestKeyPrefixes(t *testing.T) {
	prefixes := []string{"error.", "menu.", "toast.", "ui."}

	for key := range getMessages(DefaultLanguage) {
		valid := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
				valid = true
				break
			}
		}
		if !valid {
			t.Errorf("key %q should start with one of %v", key, prefixes)
		}
	}
}

func TestPlaceholdersAgreeAcrossLanguages(t *testing.T) {
	reference := getMessages(DefaultLanguage)
	for _, lang := range GetSupportedLanguages() {
		messages := getMessages(lang)
		for key, message := range reference {
			translated, ok := messages[key]
			if !ok {
				continue
			}
			for _, placeholder := range []string{"{0}", "{1}", "%s"} {
				if strings.Contains(message, placeholder) != strings.Contains(translated, placeholder) {
					t.Errorf("language %s key %q disagrees on placeholder %s", lang, key, placeholder)
				}
			}
		}
	}
}

func TestLocalizerT(t *testing.T) {
	tests := []struct {
		name     string
		language string
		key      string
		args     []any
		expected string
	}{
		{name: "Plain message", language: DefaultLanguage, key: "ui.home", expected: "Home"},
		{name: "Spanish message", language: SpanishMessages, key: "ui.home", expected: "Inicio"},
		{name: "Printf argument", language: DefaultLanguage, key: "toast.saved", args: []any{"Creep"}, expected: "Saved Creep to your Liked Songs"},
		{name: "Template arguments", language: DefaultLanguage, key: "ui.loaded_of", args: []any{50, 120}, expected: "50 of 120 loaded"},
		{name: "Spanish template", language: SpanishMessages, key: "ui.loaded_of", args: []any{1, 2}, expected: "1 de 2 cargadas"},
		{name: "Unknown key", language: SpanishMessages, key: "ui.nope", expected: "ui.nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := NewLocalizer(tt.language).T(tt.key, tt.args...); result != tt.expected {
				t.Errorf("T(%q) = %q, expected %q", tt.key, result, tt.expected)
			}
		})
	}
}

func TestLocalizerFallsBackToEnglish(t *testing.T) {
	localizer := &Localizer{language: SpanishMessages, messages: map[string]string{}}

	if result := localizer.T("error.load_failed", "playlists"); result != "Could not load playlists" {
		t.Errorf("T(error.load_failed) = %q, expected %q", result, "Could not load playlists")
	}
}

func TestTemplateReplace(t *testing.T) {
	tests := []struct {
		template string
		args     []any
		expected string
	}{
		{"{0} of {1}", []any{1, 10}, "1 of 10"},
		{"{1} before {0}", []any{"a", "b"}, "b before a"},
		{"{0} and {0}", []any{"x"}, "x and x"},
		{"missing {1}", []any{"x"}, "missing {1}"},
		{"no args {0}", nil, "no args {0}"},
	}

	for _, tt := range tests {
		if got := TemplateReplace(tt.template, tt.args...); got != tt.expected {
			t.Errorf("TemplateReplace(%q, %v) = %q, expected %q", tt.template, tt.args, got, tt.expected)
		}
	}
}

func TestNewLocalizerUnsupportedLanguage(t *testing.T) {
	localizer := NewLocalizer("xx")
	if localizer.Language() != DefaultLanguage {
		t.Errorf("Language() = %q, expected %q", localizer.Language(), DefaultLanguage)
	}
	if !IsSupported(SpanishMessages) || IsSupported("xx") {
		t.Errorf("IsSupported disagrees with GetSupportedLanguages() = %v", GetSupportedLanguages())
	}
}

func BenchmarkLocalizerWithArgs(b *testing.B) {
	localizer := NewLocalizer(SpanishMessages)

	b.ResetTimer()
	for range b.N {
		_ = localizer.T("ui.loaded_of", 50, 120)
	}
}
