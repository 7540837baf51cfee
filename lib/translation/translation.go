package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

const domain = "default"

// Configure loads the catalog for lang from dir. A missing catalog leaves
// every message untranslated.
func Configure(dir, lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = "en"
	}
	gotext.Configure(dir, lang, domain)
}

// Language reports the configured language, "en" when none is set.
func Language() string {
	lang := gotext.GetLanguage()
	if lang == "und" || lang == "" {
		return "en"
	}
	return lang
}

// Translate returns the localized text for msgID, or msgID itself when no translation exists.
func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}

// TranslateN picks the singular or plural form for n.
func TranslateN(msgID, plural string, n int, vars ...interface{}) string {
	return gotext.GetN(msgID, plural, n, vars...)
}
