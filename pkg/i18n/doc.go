// Package i18n provides translations with CLDR plural rules and locale-aware
// number formatting built on golang.org/x/text.
//
// A Bundle is built once and is immutable afterwards:
//
//	//go:embed translations
//	var translationsFS embed.FS
//
//	sub, _ := fs.Sub(translationsFS, "translations")
//	bundle, err := i18n.New(
//		i18n.WithDefaultLanguage("en"),
//		i18n.WithYAMLDir(sub), // en/common.yaml, de/common.yaml, ...
//	)
//
//	bundle.T("de", "common.welcome")
//	bundle.Tn("pl", "common.items", 5) // picks "common.items.many"
//
// Language negotiation uses the x/text matcher, so "de-AT" finds "de" and
// unknown languages fall back to the default:
//
//	lang := bundle.Match(r.Header.Get("Accept-Language"))
//
// A Translator binds a bundle to one language and namespace, and is what the
// i18n middleware stores on each request:
//
//	tr := i18n.NewTranslator(bundle, "de", "common")
//	tr.T("greeting", "name", "Ada")
//	tr.FormatNumber(1234.5) // "1.234,5"
package i18n
