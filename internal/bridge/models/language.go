package models

import "strings"

// Language is a locale supported by the verification UI.
type Language string

var supportedLanguages = map[string]Language{}

func init() {
	for _, code := range []string{
		"en", "ar", "bg", "bn", "ca", "cnr", "cs", "da", "de", "el", "es", "et", "fa", "fi",
		"fr", "he", "hi", "hr", "hu", "hy", "id", "it", "ja", "ka", "ko", "lt", "lv", "mk",
		"ms", "nl", "no", "pl", "pt", "pt-BR", "ro", "ru", "sk", "sl", "so", "sr", "sv", "th",
		"tr", "uk", "uz", "vi", "zh", "zh-CN", "zh-TW",
	} {
		supportedLanguages[normalizeLanguageCode(code)] = Language(code)
	}
}

// LanguageFromCode resolves a locale code to a supported language.
// Matching ignores case and accepts "_" as the region separator.
func LanguageFromCode(code string) (Language, bool) {
	lang, ok := supportedLanguages[normalizeLanguageCode(code)]
	return lang, ok
}

func (l Language) Code() string {
	return string(l)
}

func normalizeLanguageCode(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}
