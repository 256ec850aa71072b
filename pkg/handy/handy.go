// Package handy provides the date helper exported to templates as "handy".
package handy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
)

// DefaultPattern is the layout used by Format when none is supplied.
const DefaultPattern = "2006-01-02"

// ErrUnsupportedValue is returned for values that cannot become a date.
var ErrUnsupportedValue = errors.New("handy: unsupported date value")

// Dates formats and parses dates for one render locale.
type Dates struct {
	locale   monday.Locale
	location *time.Location
}

// New binds the helper to a locale (BCP 47 or underscore form) and location.
// A nil location means time.Local.
func New(locale string, location *time.Location) *Dates {
	if location == nil {
		location = time.Local
	}
	return &Dates{locale: mondayLocale(locale), location: location}
}

// Date converts value to a time. Strings are parsed with layout when one is
// given, otherwise any common date representation is accepted.
func (d *Dates) Date(value any, layout ...string) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.In(d.location), nil
	case *time.Time:
		if v != nil {
			return v.In(d.location), nil
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, fmt.Errorf("%w: empty string", ErrUnsupportedValue)
		}
		if len(layout) > 0 && layout[0] != "" {
			t, err := time.ParseInLocation(layout[0], trimmed, d.location)
			if err != nil {
				return time.Time{}, fmt.Errorf("handy: parse %q with %q: %w", trimmed, layout[0], err)
			}
			return t, nil
		}
		t, err := dateparse.ParseIn(trimmed, d.location)
		if err != nil {
			return time.Time{}, fmt.Errorf("handy: parse %q: %w", trimmed, err)
		}
		return t, nil
	case int64:
		return time.Unix(v, 0).In(d.location), nil
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

// Format renders value with pattern (a Go layout), translating month and day
// names for the helper's locale. A nil value renders as an empty string.
func (d *Dates) Format(value any, pattern ...string) (string, error) {
	if value == nil {
		return "", nil
	}
	layout := DefaultPattern
	if len(pattern) > 0 && strings.TrimSpace(pattern[0]) != "" {
		layout = pattern[0]
	}
	t, err := d.Date(value)
	if err != nil {
		return "", err
	}
	return monday.Format(t, layout, d.locale), nil
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"sv":    monday.LocaleSvSE,
	"sv_se": monday.LocaleSvSE,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"ko":    monday.LocaleKoKR,
	"ko_kr": monday.LocaleKoKR,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
}

func mondayLocale(locale string) monday.Locale {
	locale = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
	if l, ok := mondayLocales[locale]; ok {
		return l
	}
	lang, _, _ := strings.Cut(locale, "_")
	if l, ok := mondayLocales[lang]; ok {
		return l
	}
	return monday.LocaleEnUS
}
