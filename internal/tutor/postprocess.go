package tutor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RE2 has no backreferences or lookahead, so the quoted form enumerates the
// quote pairs and the button-context form captures the trailing word instead.
var (
	newButtonQuotedRE  = regexp.MustCompile("(?i)(?:\"\\s*New\\s*\"|'\\s*New\\s*'|`\\s*New\\s*`|[“”]\\s*New\\s*[“”])")
	newButtonContextRE = regexp.MustCompile(`(?i)\bNew\b(\s*(?:tugma|tugmasi|tugmasini|button|кнопк))`)
)

func extractPrimaryActionLabel(ctx map[string]any) string {
	ui, ok := ctx["ui"].(map[string]any)
	if !ok {
		return ""
	}
	pageActions, ok := ui["page_actions"].(map[string]any)
	if !ok {
		return ""
	}
	primary, ok := pageActions["primary_action"].(string)
	if !ok || strings.TrimSpace(primary) == "" {
		return ""
	}
	return clipUIText(primary, 80)
}

// EnforcePrimaryActionLabel rewrites generic "New" button references to the
// exact on-screen primary action label, so replies never point the user at a
// button that doesn't exist in their UI language.
func EnforcePrimaryActionLabel(reply string, ctx map[string]any) string {
	text := strings.TrimSpace(reply)
	if text == "" {
		return reply
	}

	primary := extractPrimaryActionLabel(ctx)
	if primary == "" {
		return reply
	}

	// If the primary action is literally "New" (some setups), do nothing.
	if strings.EqualFold(strings.TrimSpace(primary), "new") {
		return reply
	}

	primaryQuoted := `"` + primary + `"`

	out := newButtonQuotedRE.ReplaceAllString(text, primaryQuoted)
	out = newButtonContextRE.ReplaceAllString(out, primaryQuoted+"${1}")
	return out
}

const (
	terminalPunctuation     = ".!?…"
	continuationPunctuation = ":,-—"

	shortReplyLen    = 120
	completeReplyLen = 1800
)

// LooksTruncated is a heuristic guess at whether the model stopped mid-answer.
// Thresholds are deliberate: short unfinished-looking text counts, anything
// over 1800 chars is assumed complete to avoid pointless continuation calls.
func LooksTruncated(reply string) bool {
	text := strings.TrimSpace(reply)
	if text == "" {
		return true
	}

	last, _ := utf8.DecodeLastRuneInString(text)
	runeCount := len([]rune(text))

	if runeCount < shortReplyLen {
		// Short answers can be complete; only treat as truncated if it
		// doesn't look finished.
		return !strings.ContainsRune(terminalPunctuation, last)
	}
	if runeCount > completeReplyLen {
		return false
	}
	if strings.ContainsRune(terminalPunctuation, last) {
		return false
	}
	// Ends with alphanumeric or punctuation that often implies continuation.
	return unicode.IsLetter(last) || unicode.IsDigit(last) ||
		strings.ContainsRune(continuationPunctuation, last)
}
