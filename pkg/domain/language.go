package domain

import (
	"strings"

	dErrors "rtidesk/pkg/domain-errors"
)

// Language is the language an application is drafted and filed in.
// Invariant: the value is one of the supported languages.
//
// Usage: construct via ParseLanguage at trust boundaries; direct casting
// bypasses validation.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
	LanguageMarathi Language = "Marathi"
	LanguageTamil   Language = "Tamil"
	LanguageBengali Language = "Bengali"
	LanguageTelugu  Language = "Telugu"
)

// DefaultLanguage applies when a request leaves the language empty.
const DefaultLanguage = LanguageEnglish

var supportedLanguages = map[Language]bool{
	LanguageEnglish: true,
	LanguageHindi:   true,
	LanguageMarathi: true,
	LanguageTamil:   true,
	LanguageBengali: true,
	LanguageTelugu:  true,
}

// ParseLanguage validates a language taken from a request. Empty input yields
// DefaultLanguage; matching is case-insensitive and returns the canonical name.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	for lang := range supportedLanguages {
		if strings.EqualFold(string(lang), s) {
			return lang, nil
		}
	}
	return "", dErrors.Validation("unsupported language: "+s, "language")
}

// IsValid reports whether l is one of the supported languages.
func (l Language) IsValid() bool {
	return supportedLanguages[l]
}

func (l Language) String() string {
	return string(l)
}
