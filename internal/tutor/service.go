package tutor

import (
	"context"
	"log"
	"strings"

	"github.com/erplabs/ai-tutor-bridge/internal/ai"
)

type service struct {
	settings SettingsStore
	ai       ai.AI
}

func NewService(settings SettingsStore, aiClient ai.AI) Service {
	return &service{
		settings: settings,
		ai:       aiClient,
	}
}

const (
	casualCompletionCap       = 1024
	troubleshootCompletionCap = 8192
	locationCompletionCap     = 320
)

func (s *service) TutorConfig(ctx context.Context) (ConfigStatus, error) {
	cfg, err := s.settings.GetConfig(ctx)
	if err != nil {
		return ConfigStatus{}, err
	}

	return ConfigStatus{
		Config:   cfg.Public(),
		AIReady:  s.ai.Ready(),
		Language: string(NormalizeLang(cfg.Language)),
	}, nil
}

func (s *service) Chat(ctx context.Context, message string, rawContext, rawHistory any) (Reply, error) {
	cfg, err := s.settings.GetConfig(ctx)
	if err != nil {
		return Reply{}, err
	}

	userMessage := strings.TrimSpace(message)
	fallback := NormalizeLang(cfg.Language)

	if !cfg.Enabled {
		lang := DetectLang(userMessage, fallback)
		return Reply{OK: false, Reply: replyText("disabled", lang)}, nil
	}

	if userMessage == "" {
		return Reply{OK: false, Reply: replyText("empty_message", fallback)}, nil
	}

	log.Printf("[svc] chat message=%q", clipRunes(userMessage, 120))

	pageCtx := asContextMap(Sanitize(asContextMap(rawContext)))
	autoHelp := isAutoHelp(userMessage)
	lang := DetectLang(userMessage, fallback)

	// Auto-help messages should follow the user's ERP UI language when available.
	if autoHelp {
		if uiLang, ok := uiLanguage(pageCtx); ok {
			fallback = uiLang
			lang = uiLang
		}
	}

	if isGreetingOnly(userMessage) {
		return Reply{OK: true, Reply: replyText("greeting", lang)}, nil
	}

	if isLocationQuestion(userMessage) {
		reply, err := s.locationLLMReply(ctx, userMessage, pageCtx, cfg, fallback)
		if err != nil {
			if ai.IsUnavailable(err) {
				return Reply{OK: false, Reply: replyText("ai_not_configured", lang)}, nil
			}
			return Reply{}, err
		}
		return Reply{OK: true, Reply: reply}, nil
	}

	troubleshoot := autoHelp || wantsTroubleshooting(userMessage, pageCtx)

	messages := buildChatPrompt(promptInput{
		message:      userMessage,
		ctx:          pageCtx,
		cfg:          cfg,
		history:      parseHistory(rawHistory),
		lang:         lang,
		fallback:     fallback,
		troubleshoot: troubleshoot,
		autoHelp:     autoHelp,
	})

	maxTokens := casualCompletionCap
	if troubleshoot {
		maxTokens = troubleshootCompletionCap
	}

	reply, err := s.ai.Complete(ctx, messages, maxTokens)
	if err != nil {
		if ai.IsUnavailable(err) {
			return Reply{OK: false, Reply: replyText("ai_not_configured", lang)}, nil
		}
		return Reply{}, err
	}

	reply = EnforcePrimaryActionLabel(reply, pageCtx)

	// Best-effort: if the response looks cut off, ask the model to continue once.
	if troubleshoot && reply != "" && LooksTruncated(reply) {
		reply = s.continueReply(ctx, messages[0], reply, fallback)
	}

	return Reply{OK: true, Reply: reply}, nil
}

// continueReply issues a single bounded continuation call. Failures are
// swallowed and the original (possibly truncated) reply is returned.
func (s *service) continueReply(ctx context.Context, systemPrompt ai.Message, reply string, fallback Lang) string {
	messages := []ai.Message{
		systemPrompt,
		{Role: ai.RoleSystem, Content: languagePolicyMessage(fallback)},
		{Role: ai.RoleSystem, Content: continueInstruction},
		{Role: ai.RoleAssistant, Content: reply},
		{Role: ai.RoleUser, Content: "Continue."},
	}

	continuation, err := s.ai.Complete(ctx, messages, 0)
	if err != nil {
		log.Println("[svc] continuation failed:", err)
		return reply
	}
	if continuation == "" {
		return reply
	}
	return strings.TrimSpace(strings.TrimRight(reply, " \t\n") + "\n\n" + strings.TrimLeft(continuation, " \t\n"))
}

// locationLLMReply answers "where am I / which field" questions with a
// narrow context-summary-only prompt. Location answers never discuss errors,
// so the event block is stripped first.
func (s *service) locationLLMReply(ctx context.Context, message string, pageCtx map[string]any, cfg Config, fallback Lang) (string, error) {
	lang := DetectLang(message, fallback)
	summary := ContextSummary(withoutKey(pageCtx, "event"), lang)
	if summary == "" {
		return replyText("location_unknown", lang), nil
	}

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: strings.TrimSpace(cfg.SystemPrompt)},
		{Role: ai.RoleSystem, Content: languagePolicyMessage(fallback)},
		{Role: ai.RoleSystem, Content: languagePinMessage(lang, fallback)},
		{Role: ai.RoleSystem, Content: locationContextNote},
		{Role: ai.RoleSystem, Content: "Current ERP page context (summary, sanitized):\n" + summary},
		{Role: ai.RoleUser, Content: message},
	}

	reply, err := s.ai.Complete(ctx, messages, locationCompletionCap)
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" || looksDismissive(reply) {
		// Don't trust a model that claims blindness; fall back to the
		// deterministic summary-based answer.
		return locationReply(pageCtx, lang), nil
	}
	return reply, nil
}

func locationReply(pageCtx map[string]any, lang Lang) string {
	summary := ContextSummary(withoutKey(pageCtx, "event"), lang)
	if summary != "" {
		return replyText("location_here", lang) + summary
	}
	return replyText("location_unknown", lang)
}

func asContextMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// uiLanguage reads the UI snapshot's reported language if it is one we support.
func uiLanguage(pageCtx map[string]any) (Lang, bool) {
	ui, ok := pageCtx["ui"].(map[string]any)
	if !ok {
		return "", false
	}
	raw := strings.ToLower(strings.TrimSpace(coerceText(ui["language"])))
	raw = strings.SplitN(strings.ReplaceAll(raw, "_", "-"), "-", 2)[0]
	switch Lang(raw) {
	case LangUZ, LangRU, LangEN:
		return Lang(raw), true
	}
	return "", false
}
