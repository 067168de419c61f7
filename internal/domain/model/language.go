package model

import "strings"

// Language is the target language tag for generated content.
type Language string

const (
	LanguageFR Language = "FR"
	LanguageEN Language = "EN"
)

// DefaultLanguage is used when nothing else selects one.
const DefaultLanguage = LanguageFR

// ParseLanguage accepts "fr", "EN", "en-US"... and returns ok=false for anything else.
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch Language(s) {
	case LanguageFR:
		return LanguageFR, true
	case LanguageEN:
		return LanguageEN, true
	}
	return "", false
}

// Code is the lower-case form used for locale files.
func (l Language) Code() string { return strings.ToLower(string(l)) }
