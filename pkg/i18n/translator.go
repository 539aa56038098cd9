package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Translator is a Bundle bound to one language and an optional namespace.
type Translator struct {
	bundle    *Bundle
	printer   *message.Printer
	language  string
	namespace string
}

// NewTranslator binds b to lang. An empty lang means the default language.
func NewTranslator(b *Bundle, lang, namespace string) *Translator {
	if b == nil {
		panic("i18n: bundle is not provided")
	}
	if lang == "" {
		lang = b.DefaultLanguage()
	}
	return &Translator{
		bundle:    b,
		printer:   message.NewPrinter(b.tagOf(lang)),
		language:  lang,
		namespace: namespace,
	}
}

// T translates key. args are M values or alternating name/value pairs:
//
//	tr.T("greeting", "name", "Ada")
//	tr.T("greeting", i18n.M{"name": "Ada"})
func (t *Translator) T(key string, args ...any) string {
	return t.bundle.T(t.language, t.key(key), placeholders(args)...)
}

// Tn translates the plural form of key for n.
func (t *Translator) Tn(key string, n int, args ...any) string {
	return t.bundle.Tn(t.language, t.key(key), n, placeholders(args)...)
}

// FormatNumber formats n with the language's digit grouping and decimal separator.
func (t *Translator) FormatNumber(n float64) string {
	return t.printer.Sprint(number.Decimal(n))
}

// FormatPercent formats n (0.25 is 25%) for the language.
func (t *Translator) FormatPercent(n float64) string {
	return t.printer.Sprint(number.Percent(n))
}

// Language returns the translator's language.
func (t *Translator) Language() string { return t.language }

// Namespace returns the translator's namespace.
func (t *Translator) Namespace() string { return t.namespace }

// Tag returns the parsed language tag.
func (t *Translator) Tag() language.Tag { return t.bundle.tagOf(t.language) }

func (t *Translator) key(key string) string {
	if t.namespace == "" {
		return key
	}
	return t.namespace + "." + key
}

func placeholders(args []any) []M {
	var out []M
	pairs := make(M)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case M:
			out = append(out, v)
		case map[string]any:
			out = append(out, M(v))
		default:
			if i+1 < len(args) {
				pairs[fmt.Sprint(v)] = args[i+1]
				i++
			}
		}
	}
	if len(pairs) > 0 {
		out = append(out, pairs)
	}
	return out
}
