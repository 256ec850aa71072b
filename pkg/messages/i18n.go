package messages

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator was configured.
var ErrMissingTranslator = errors.New("messages: translator not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate implements Translator.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Localize fills the display text of keyed messages. Messages that already
// carry text are left alone.
func (m *Messages) Localize(locale string, t Translator, onMissing MissingTranslationHandler) {
	if m == nil {
		return
	}
	for property, list := range m.byProperty {
		for i := range list {
			if list[i].Message != "" || list[i].Key == "" {
				continue
			}
			list[i].Message = sanitize(translate(locale, list[i].Key, list[i].Args, t, onMissing))
		}
		m.byProperty[property] = list
	}
}

func translate(locale, key string, args []any, t Translator, onMissing MissingTranslationHandler) string {
	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, args, ErrMissingTranslator)
		}
		return key
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, args, err)
	}
	return key
}
