package tutor

import (
	"regexp"
	"strings"
)

// Lang — supported reply languages.
type Lang string

const (
	LangUZ Lang = "uz"
	LangRU Lang = "ru"
	LangEN Lang = "en"
)

var (
	cyrillicRE       = regexp.MustCompile(`[\x{0400}-\x{04FF}]`)
	uzCyrillicHintRE = regexp.MustCompile(`[ўқғҳЎҚҒҲ]`)
	enHintRE         = regexp.MustCompile(`(?i)\b(the|and|or|but|what|why|how|where|when|who|which|hi|hello|hey|please|thanks|thx|thank\s+you)\b`)

	// Explicit language requests override script detection.
	langRequestEnRE = regexp.MustCompile(`(?i)(?:^|\b)(english|in\s+english|speak\s+english|respond\s+in\s+english|ingliz|inglizcha|en)(?:\b|$)`)
	langRequestRuRE = regexp.MustCompile(`(?i)(?:^|\b)(russian|in\s+russian|speak\s+russian|respond\s+in\s+russian|ruscha|ru)(?:\b|$)|по[-\s]?русски|русск`)
	langRequestUzRE = regexp.MustCompile(`(?i)(?:^|\b)(uzbek|o['’]zbek|o‘zbek|uzbekcha|o['’]zbekcha|o‘zbekcha|uz)(?:\b|$)|o['’]zbek|o‘zbek|по[-\s]?узбекски`)
)

// NormalizeLang maps any locale tag to its primary subtag, defaulting to uz.
func NormalizeLang(tag string) Lang {
	raw := strings.ToLower(strings.TrimSpace(tag))
	if raw == "" {
		return LangUZ
	}
	raw = strings.SplitN(strings.ReplaceAll(raw, "_", "-"), "-", 2)[0]
	switch Lang(raw) {
	case LangUZ, LangRU, LangEN:
		return Lang(raw)
	}
	return LangUZ
}

// DetectLang infers the user's language from the message text.
// Precedence: explicit request > Cyrillic script > English stop-words > fallback.
func DetectLang(message string, fallback Lang) Lang {
	text := strings.TrimSpace(message)
	if text == "" {
		return fallback
	}

	if langRequestEnRE.MatchString(text) {
		return LangEN
	}
	if langRequestRuRE.MatchString(text) {
		return LangRU
	}
	if langRequestUzRE.MatchString(text) {
		return LangUZ
	}

	if cyrillicRE.MatchString(text) {
		if uzCyrillicHintRE.MatchString(text) {
			return LangUZ
		}
		return LangRU
	}

	if enHintRE.MatchString(text) {
		return LangEN
	}

	return fallback
}

var langLabels = map[Lang]string{
	LangUZ: "Uzbek (uz)",
	LangRU: "Russian (ru)",
	LangEN: "English (en)",
}

func languagePolicyMessage(fallback Lang) string {
	fallback = NormalizeLang(string(fallback))
	return "LANGUAGE POLICY:\n" +
		"- Reply in the same language as the user's last message.\n" +
		"- If the user explicitly requests a language, follow it.\n" +
		"- If the user's message is language-ambiguous (numbers/code), default to " + langLabels[fallback] + ".\n" +
		"- Do not mix languages unless the user does.\n" +
		"- Exception: when referencing UI buttons/labels, you may quote the exact on-screen label even if it's in another language.\n" +
		"- This policy overrides other language instructions.\n"
}

// languagePinMessage pins the single response language. A second layer on
// top of the policy note, compensates for LLM language drift.
func languagePinMessage(lang, fallback Lang) string {
	if lang == "" {
		lang = fallback
	}
	switch NormalizeLang(string(lang)) {
	case LangRU:
		return "For this response: reply in Russian (ru). Do not reply in Uzbek or English."
	case LangEN:
		return "For this response: reply in English (en). Do not reply in Uzbek or Russian."
	}
	return "For this response: reply in Uzbek (uz). Do not reply in Russian or English."
}
