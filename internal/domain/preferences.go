package domain

import "time"

// Language is a UI language code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

var languageNames = map[Language]string{
	LanguageEnglish: "English",
	LanguageHindi:   "Hindi",
}

// Supported reports whether the language has a translation catalog.
func (l Language) Supported() bool {
	_, ok := languageNames[l]
	return ok
}

// DisplayName returns the English name of the language, falling back to English.
func (l Language) DisplayName() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[LanguageEnglish]
}

// Preferences holds per-user session settings. ActingAs is the user whose
// records are being viewed and is always within the owner's visibility set.
type Preferences struct {
	UserID    string
	Language  Language
	ActingAs  string
	UpdatedAt time.Time
}
