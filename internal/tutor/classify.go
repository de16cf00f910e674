package tutor

import (
	"regexp"
	"strings"
)

var (
	// Fixed prefix the desk widget puts in front of auto-generated help messages.
	autoHelpPrefixRE = regexp.MustCompile(`(?i)^\s*(?:ERP\s+tizimida\s+xatolik/ogohlantirish\s+chiqdi\.|ERP\s+system\s+reported\s+an\s+error\s+or\s+warning\.)`)

	troubleKeywordsRE = regexp.MustCompile(`(?i)\b(xato|xatolik|error|ogohlantirish|warning|muammo|tuzat|fix|failed|traceback|permission|ruxsat|not\s+found)\b`)

	greetingOnlyRE = regexp.MustCompile(`(?i)^\s*(salom|assalomu\s+alaykum|asalomu\s+alaykum|salam|hi|hello|hey|rahmat|raxmat|thanks|thx|привет|здравствуйте|спасибо|благодарю)\s*[!?.…]*\s*$`)

	whereAmIRE = regexp.MustCompile(`(?i)(?:^|\b)(qayerda(man)?|hozir\s+qayer|qaysi\s+(sahifa|qism|bo['’]lim|bo‘lim|joy|yo['’]l|yol|path\w*|route\w*|url\w*)|where\s+am\s+i)(?:\b|$)`)

	whichFieldRE = regexp.MustCompile(`(?i)\b(qaysi\s+(maydon|field)|qayerini\s+to['’]ldiryapman)\b`)

	dismissiveRE = regexp.MustCompile(`(?i)(ko['’]ra\s+olmayman|visual\s+ma['’]lumot|ko['’]rinmaydi|cannot\s+see|can['’]t\s+see|i\s+can['’]t\s+see|url\s+manzilini\s+ayt)`)
)

func isAutoHelp(message string) bool {
	return autoHelpPrefixRE.MatchString(message)
}

func isGreetingOnly(message string) bool {
	return greetingOnlyRE.MatchString(message)
}

func isLocationQuestion(message string) bool {
	return whereAmIRE.MatchString(message) || whichFieldRE.MatchString(message)
}

func looksDismissive(reply string) bool {
	return dismissiveRE.MatchString(reply)
}

// wantsTroubleshooting decides whether the reply may use the long structured
// troubleshooting template.
func wantsTroubleshooting(message string, ctx map[string]any) bool {
	if troubleKeywordsRE.MatchString(message) {
		return true
	}

	event, ok := ctx["event"].(map[string]any)
	if !ok {
		return false
	}
	severity := strings.ToLower(strings.TrimSpace(coerceText(event["severity"])))
	if severity != "error" && severity != "warning" {
		return false
	}
	return strings.Contains(message, "?") || len([]rune(strings.TrimSpace(message))) > 30
}
