package services

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// gttsLanguages is the set of codes the Google Translate speech endpoint answers for.
var gttsLanguages = map[string]string{
	"af": "Afrikaans", "am": "Amharic", "ar": "Arabic", "bg": "Bulgarian",
	"bn": "Bengali", "bs": "Bosnian", "ca": "Catalan", "cs": "Czech",
	"cy": "Welsh", "da": "Danish", "de": "German", "el": "Greek",
	"en": "English", "es": "Spanish", "et": "Estonian", "eu": "Basque",
	"fi": "Finnish", "fr": "French", "fr-ca": "French (Canada)", "gl": "Galician",
	"gu": "Gujarati", "ha": "Hausa", "hi": "Hindi", "hr": "Croatian",
	"hu": "Hungarian", "id": "Indonesian", "is": "Icelandic", "it": "Italian",
	"iw": "Hebrew", "ja": "Japanese", "jw": "Javanese", "km": "Khmer",
	"kn": "Kannada", "ko": "Korean", "la": "Latin", "lt": "Lithuanian",
	"lv": "Latvian", "ml": "Malayalam", "mr": "Marathi", "ms": "Malay",
	"my": "Myanmar (Burmese)", "ne": "Nepali", "nl": "Dutch", "no": "Norwegian",
	"pa": "Punjabi", "pl": "Polish", "pt": "Portuguese", "pt-pt": "Portuguese (Portugal)",
	"ro": "Romanian", "ru": "Russian", "si": "Sinhala", "sk": "Slovak",
	"sq": "Albanian", "sr": "Serbian", "su": "Sundanese", "sv": "Swedish",
	"sw": "Swahili", "ta": "Tamil", "te": "Telugu", "th": "Thai",
	"tl": "Filipino", "tr": "Turkish", "uk": "Ukrainian", "ur": "Urdu",
	"vi": "Vietnamese", "yue": "Cantonese", "zh": "Chinese (Mandarin)",
	"zh-cn": "Chinese (Simplified)", "zh-tw": "Chinese (Traditional)",
}

// normalizeLanguage lowercases a code and turns "_" into "-".
func normalizeLanguage(code string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), "_", "-")
}

func unsupportedLanguage(code string) error {
	return invalidField("language", "unsupported language %q", code)
}

// checkLanguageIn accepts code when its normalized form is a key of supported.
func checkLanguageIn(code string, supported []string) error {
	n := normalizeLanguage(code)
	for _, s := range supported {
		if n == s {
			return nil
		}
	}
	return unsupportedLanguage(code)
}

// checkLanguageTag accepts any well-formed BCP-47 tag with a known base language.
func checkLanguageTag(code string) error {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return unsupportedLanguage(code)
	}
	if _, conf := tag.Base(); conf == language.No {
		return unsupportedLanguage(code)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// regionalLanguage returns "base-REGION" when code names a region explicitly,
// and "" otherwise so the engine detects the language from the text.
func regionalLanguage(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return base.String() + "-" + region.String()
}
