// Package locale maps language codes to static message templates.
// Lookup falls back to the default language on any miss, so partial
// translations are safe.
package locale

import "sort"

// Store is an immutable lookup table over the compiled-in translations.
type Store struct {
	defaultCode string
}

// NewStore returns a store whose fallback language is defaultCode.
// An unknown defaultCode falls back to English.
func NewStore(defaultCode string) *Store {
	if _, ok := tables[defaultCode]; !ok {
		defaultCode = "en"
	}
	return &Store{defaultCode: defaultCode}
}

// DefaultCode returns the fallback language code.
func (s *Store) DefaultCode() string { return s.defaultCode }

// Has reports whether code is a supported language.
func (s *Store) Has(code string) bool {
	_, ok := tables[code]
	return ok
}

// Codes returns the supported language codes in stable order.
func (s *Store) Codes() []string {
	codes := make([]string, 0, len(tables))
	for code := range tables {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup resolves key in the given language, falling back to the default
// language and finally to the key itself so a missing entry is visible
// rather than silent.
func (s *Store) Lookup(code, key string) string {
	if t, ok := tables[code]; ok {
		if msg, ok := t[key]; ok {
			return msg
		}
	}
	if msg, ok := tables[s.defaultCode][key]; ok {
		return msg
	}
	return key
}
