package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// DefaultLang is the default language used when none is configured.
const DefaultLang = "en"

// M holds placeholder values for a message.
type M map[string]any

// Bundle holds the translations of every language.
// It is immutable after creation and safe for concurrent use.
type Bundle struct {
	// key format: "lang:key.path"
	messages    map[string]string
	tags        map[string]language.Tag
	matcher     language.Matcher
	missing     func(lang, key string)
	defaultLang string
	languages   []string
}

// Option configures a Bundle during construction.
type Option func(*Bundle) error

// New creates a bundle. Languages are those with translations plus the default.
func New(opts ...Option) (*Bundle, error) {
	b := &Bundle{
		messages:    make(map[string]string),
		tags:        make(map[string]language.Tag),
		defaultLang: DefaultLang,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("i18n: apply option: %w", err)
		}
	}
	if b.defaultLang == "" {
		return nil, ErrEmptyLanguage
	}
	if err := b.addLanguage(b.defaultLang); err != nil {
		return nil, err
	}

	// the default goes first so the matcher falls back to it
	b.languages = append([]string{b.defaultLang}, slices.DeleteFunc(slices.Sorted(maps.Keys(b.tags)), func(l string) bool {
		return l == b.defaultLang
	})...)
	tags := make([]language.Tag, len(b.languages))
	for i, l := range b.languages {
		tags[i] = b.tags[l]
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(b *Bundle) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		b.defaultLang = lang
		return nil
	}
}

// WithTranslations adds messages for lang. Nested maps are flattened with dots:
// {"errors": {"not_found": "..."}} is looked up as "errors.not_found".
func WithTranslations(lang string, messages map[string]any) Option {
	return func(b *Bundle) error {
		return b.add(lang, "", messages)
	}
}

// WithMissingKeyHandler registers a callback for keys missing in every fallback language.
func WithMissingKeyHandler(fn func(lang, key string)) Option {
	return func(b *Bundle) error {
		b.missing = fn
		return nil
	}
}

// Languages returns the available languages, default first.
func (b *Bundle) Languages() []string { return slices.Clone(b.languages) }

// DefaultLanguage returns the fallback language.
func (b *Bundle) DefaultLanguage() string { return b.defaultLang }

// Match picks the best available language for an Accept-Language header value.
// It returns the default language when nothing matches.
func (b *Bundle) Match(accept string) string {
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.defaultLang
	}
	return b.languages[idx]
}

// Supports reports whether lang has a configured translation set.
func (b *Bundle) Supports(lang string) bool {
	_, ok := b.tags[lang]
	return ok
}

// T returns the message for key in lang, falling back to the base language
// and then to the default language. A missing key is returned as is.
func (b *Bundle) T(lang, key string, placeholders ...M) string {
	msg, ok := b.lookup(lang, key)
	if !ok {
		if b.missing != nil {
			b.missing(lang, key)
		}
		return key
	}
	return replace(msg, placeholders...)
}

// Tn returns the plural form of key for n. Forms are looked up as "key.zero",
// "key.one", "key.two", "key.few", "key.many" and "key.other" following the CLDR
// rules of lang, with "key.other" as the fallback. n is available as {{count}}.
func (b *Bundle) Tn(lang, key string, n int, placeholders ...M) string {
	form := pluralForm(b.tagOf(lang), n)
	ph := append([]M{{"count": n}}, placeholders...)

	for _, f := range []string{form, "other"} {
		if msg, ok := b.lookup(lang, key+"."+f); ok {
			return replace(msg, ph...)
		}
	}
	return b.T(lang, key, ph...)
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	for _, l := range []string{lang, baseLanguage(lang), b.defaultLang} {
		if msg, ok := b.messages[l+":"+key]; ok {
			return msg, true
		}
	}
	return "", false
}

func (b *Bundle) tagOf(lang string) language.Tag {
	if t, ok := b.tags[lang]; ok {
		return t
	}
	if t, err := language.Parse(lang); err == nil {
		return t
	}
	return b.tags[b.defaultLang]
}

func (b *Bundle) add(lang, prefix string, messages map[string]any) error {
	if err := b.addLanguage(lang); err != nil {
		return err
	}
	for k, v := range flatten(messages, prefix) {
		b.messages[lang+":"+k] = v
	}
	return nil
}

func (b *Bundle) addLanguage(lang string) error {
	if lang == "" {
		return ErrEmptyLanguage
	}
	if _, ok := b.tags[lang]; ok {
		return nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidLanguage, lang, err)
	}
	b.tags[lang] = tag
	return nil
}

func pluralForm(tag language.Tag, n int) string {
	abs := max(n, -n)
	switch plural.Cardinal.MatchPlural(tag, abs, 0, 0, 0, 0) {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

func flatten(data map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range data {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out[key] = v
		case map[string]any:
			maps.Copy(out, flatten(v, key))
		case map[string]string:
			for sk, sv := range v {
				out[key+"."+sk] = sv
			}
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// replace substitutes {{name}} placeholders. Later maps win.
func replace(msg string, placeholders ...M) string {
	if len(placeholders) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	merged := make(M)
	for _, p := range placeholders {
		maps.Copy(merged, p)
	}
	for k, v := range merged {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", fmt.Sprint(v))
	}
	return msg
}

// baseLanguage strips the region from a language tag ("en-US" is "en").
func baseLanguage(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}
