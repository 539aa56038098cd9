package middlewares

import (
	"github.com/dmitrymomot/runway/internal"
	"github.com/dmitrymomot/runway/pkg/i18n"
)

// I18nConfig configures I18n.
type I18nConfig struct {
	Namespace string
	Extractor *internal.Extractor
}

// I18nOption configures I18nConfig.
type I18nOption func(*I18nConfig)

// WithI18nNamespace prefixes translation keys looked up through c.T.
func WithI18nNamespace(ns string) I18nOption {
	return func(cfg *I18nConfig) { cfg.Namespace = ns }
}

// WithI18nExtractor replaces the language lookup chain.
func WithI18nExtractor(ext internal.Extractor) I18nOption {
	return func(cfg *I18nConfig) { cfg.Extractor = &ext }
}

// FromAcceptLanguage negotiates the Accept-Language header against the
// languages loaded into b.
func FromAcceptLanguage(b *i18n.Bundle) internal.ExtractorSource {
	return func(c internal.Context) (string, bool) {
		if h := c.Header("Accept-Language"); h != "" {
			return b.Match(h), true
		}
		return "", false
	}
}

// I18n picks a language for each request and stores it with a bound
// Translator; c.T and c.Language read them back. Unless replaced, the lookup
// order is the lang query parameter, the lang cookie, then Accept-Language.
// Unsupported results fall back to the bundle's default language.
func I18n(b *i18n.Bundle, opts ...I18nOption) internal.Middleware {
	var cfg I18nConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	ext := internal.NewExtractor(
		internal.FromQuery("lang"),
		internal.FromCookie("lang"),
		FromAcceptLanguage(b),
	)
	if cfg.Extractor != nil {
		ext = *cfg.Extractor
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			lang, ok := ext.Extract(c)
			if !ok || !b.Supports(lang) {
				lang = b.DefaultLanguage()
			}
			c.Set(internal.LanguageKey{}, lang)
			c.Set(internal.TranslatorKey{}, i18n.NewTranslator(b, lang, cfg.Namespace))
			return next(c)
		}
	}
}

// GetTranslator returns the request's Translator, or nil without I18n.
func GetTranslator(c internal.Context) *i18n.Translator {
	return internal.ContextValue[*i18n.Translator](c, internal.TranslatorKey{})
}

// GetLanguage returns the request's language, or "" without I18n.
func GetLanguage(c internal.Context) string {
	return internal.ContextValue[string](c, internal.LanguageKey{})
}
