// Package locale translates user-facing response strings.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-birthday-web/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator holds the message bundle and picks a language per request.
type Translator struct {
	bundle    *i18n.Bundle
	languages []string
	matcher   language.Matcher
}

// New loads every embedded locales/active.<lang>.json file.
// defaultLang is preferred when a request states no usable language.
func New(defaultLang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	if !slices.Contains(detected, defaultLang) {
		return nil, fmt.Errorf("%s: %q", config.ErrLanguage, defaultLang)
	}

	// The matcher falls back to its first tag, so the default goes first.
	ordered := append([]string{defaultLang}, slices.DeleteFunc(slices.Clone(detected), func(l string) bool {
		return l == defaultLang
	})...)
	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(l))
	}

	return &Translator{
		bundle:    bundle,
		languages: ordered,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Languages lists the loaded languages, default first.
func (t *Translator) Languages() []string {
	return slices.Clone(t.languages)
}

// Match returns the loaded language best suited to an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.languages[0]
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.languages[0]
	}
	return t.languages[idx]
}

// Localizer returns a localizer for the language matching acceptLanguage.
func (t *Translator) Localizer(acceptLanguage string) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, t.Match(acceptLanguage))
}

// Translate renders message id with data. Missing messages come back as the id itself.
func Translate(loc *i18n.Localizer, id string, data map[string]any) string {
	if loc == nil {
		return id
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, id,
			config.LogKeyError, err,
		)
		return id
	}
	return msg
}

// MonthName returns the localized name of m.
func MonthName(loc *i18n.Localizer, m time.Month) string {
	return Translate(loc, config.TKeyMonthPrefix+strconv.Itoa(int(m)), nil)
}
