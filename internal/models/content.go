package models

import (
	"time"
)

// Supported phrase languages
const (
	LanguageEnglish    = "English"
	LanguagePortuguese = "Portuguese"
)

// IsValidLanguage checks if a language is supported
func IsValidLanguage(language string) bool {
	switch language {
	case LanguageEnglish, LanguagePortuguese:
		return true
	default:
		return false
	}
}

// Phrase represents a short bilingual practice phrase
type Phrase struct {
	ID             int64     `json:"id" db:"id"`
	TargetText     string    `json:"target_text" db:"target_text"`
	TranslatedText string    `json:"translated_text" db:"translated_text"`
	Category       string    `json:"category" db:"category"`
	Language       string    `json:"language" db:"language"`
	IsFree         bool      `json:"is_free" db:"is_free"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Reading represents a short bilingual reading article
type Reading struct {
	ID                 int64     `json:"id" db:"id"`
	Title              string    `json:"title" db:"title"`
	Category           string    `json:"category" db:"category"`
	EnglishText        string    `json:"english_text" db:"english_text"`
	SpanishTranslation string    `json:"spanish_translation" db:"spanish_translation"`
	ImageURL           string    `json:"image_url" db:"image_url"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// PhraseFilter contains filter options for querying phrases
type PhraseFilter struct {
	Language string
	Category string
	// Categories restricts results to an allowlist. Applied on top of
	// Category; an empty slice means no restriction.
	Categories []string
	Limit      int
	Offset     int
}

// ReadingFilter contains filter options for querying readings
type ReadingFilter struct {
	Category   string
	Categories []string
	Limit      int
	Offset     int
}

// UserInfo is the per-request account summary attached to content responses
// so the UI can render quota progress without a second round trip.
type UserInfo struct {
	Role              string `json:"role"`
	DailyPhrasesCount int    `json:"dailyPhrasesCount"`
	RemainingToday    int    `json:"remaining_today"` // -1 means unlimited
}
