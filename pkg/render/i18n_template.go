package render

import (
	"reflect"
	"strings"

	"github.com/goliatone/go-formbind/pkg/messages"
)

// TemplateI18nConfig names the translation helpers exposed to templates.
type TemplateI18nConfig struct {
	// FuncName is the translate helper name ("translate" when blank).
	FuncName string
	// LocaleFuncName is the locale helper name ("localeOf" when blank).
	LocaleFuncName string
	// OnMissing picks the text for keys the translator cannot resolve. The
	// key itself is used when nil.
	OnMissing messages.MissingTranslationHandler
}

// TemplateI18nFuncs returns helpers for vanilla.WithTemplateFuncs:
//
//	translate(localeSource, key, args...) string
//	localeOf(localeSource) string
//
// A locale source is a locale string, a RenderOptions value, or a map or
// struct carrying a locale entry (see LocaleOf).
func TemplateI18nFuncs(t messages.Translator, cfg TemplateI18nConfig) map[string]any {
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = func(_ string, key string, _ []any, _ error) string { return key }
	}

	translate := func(src any, key string, args ...any) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		locale := LocaleOf(src)
		if t == nil {
			return onMissing(locale, key, args, messages.ErrMissingTranslator)
		}
		text, err := t.Translate(locale, key, args...)
		if err != nil || strings.TrimSpace(text) == "" {
			return onMissing(locale, key, args, err)
		}
		return text
	}

	return map[string]any{
		nameOr(cfg.FuncName, "translate"):      translate,
		nameOr(cfg.LocaleFuncName, "localeOf"): LocaleOf,
	}
}

// LocaleOf extracts a locale from a template value. Maps are read under
// "locale", structs through an exported string field named Locale.
func LocaleOf(src any) string {
	switch v := src.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case RenderOptions:
		return v.Locale
	case *RenderOptions:
		if v == nil {
			return ""
		}
		return v.Locale
	case map[string]string:
		return v["locale"]
	case map[string]any:
		s, _ := v["locale"].(string)
		return s
	}

	value := reflect.Indirect(reflect.ValueOf(src))
	if value.Kind() != reflect.Struct {
		return ""
	}
	field := value.FieldByName("Locale")
	if field.IsValid() && field.Kind() == reflect.String {
		return field.String()
	}
	return ""
}

func nameOr(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}
