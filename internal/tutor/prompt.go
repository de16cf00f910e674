package tutor

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/erplabs/ai-tutor-bridge/internal/ai"
)

const (
	maxHistoryItems   = 20
	maxHistoryContent = 2000

	maxDocFields      = 60
	maxDocStringLen   = 320
	maxRequiredFields = 50
)

// Keys blanked out one at a time when the serialized context exceeds the
// configured size budget.
var largeContextKeys = []string{"doc", "doc_values", "meta", "traceback", "server_messages"}

const serializationFailedJSON = `{"error": "context_serialization_failed"}`

// shrinkDoc reduces a document field map for prompt embedding: required
// fields first, then other scalar fields up to a total of 60. Nested
// collections, underscore-prefixed keys, nulls and long strings are dropped.
func shrinkDoc(doc map[string]any, missingRequired any) map[string]any {
	var requiredFields []string
	if missing, ok := missingRequired.([]any); ok {
		if len(missing) > maxRequiredFields {
			missing = missing[:maxRequiredFields]
		}
		for _, item := range missing {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if fieldname := coerceText(entry["fieldname"]); fieldname != "" {
				requiredFields = append(requiredFields, fieldname)
			}
		}
	}

	out := make(map[string]any)
	for _, key := range requiredFields {
		if value, ok := doc[key]; ok {
			out[key] = value
		}
	}

	// Sorted for deterministic selection; map iteration order would make
	// the 60-field cutoff random.
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if len(out) >= maxDocFields {
			break
		}
		if _, ok := out[key]; ok {
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}
		value := doc[key]
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case []any, map[string]any:
			continue
		case string:
			if len([]rune(v)) > maxDocStringLen {
				continue
			}
		}
		out[key] = value
	}

	return out
}

// truncateJSON serializes the context and caps the payload at maxKB
// kilobytes. Progressive strategy: full JSON first, then blank known-large
// keys one at a time, finally a hard byte truncation at the limit.
func truncateJSON(obj any, maxKB int) string {
	if maxKB < 1 {
		maxKB = 1
	}
	limit := maxKB * 1024

	raw, err := json.Marshal(obj)
	if err != nil {
		return serializationFailedJSON
	}
	if len(raw) <= limit {
		return string(raw)
	}

	if m, ok := obj.(map[string]any); ok {
		trimmed := make(map[string]any, len(m))
		for key, value := range m {
			trimmed[key] = value
		}
		for _, key := range largeContextKeys {
			if _, ok := trimmed[key]; !ok {
				continue
			}
			trimmed[key] = truncatedMarker
			raw2, err := json.Marshal(trimmed)
			if err != nil {
				continue
			}
			if len(raw2) <= limit {
				return string(raw2)
			}
			raw = raw2
		}
	}

	// Final: hard truncate on the byte boundary, dropping any partial rune.
	data := raw[:limit]
	for len(data) > 0 && !utf8.Valid(data) {
		data = data[:len(data)-1]
	}
	return string(data)
}

// parseHistory normalizes caller-supplied conversation history: last 20
// entries, user/assistant roles only, content capped, invalid items skipped.
func parseHistory(raw any) []HistoryItem {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	if len(items) > maxHistoryItems {
		items = items[len(items)-maxHistoryItems:]
	}

	var out []HistoryItem
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role := strings.TrimSpace(coerceText(entry["role"]))
		content := strings.TrimSpace(coerceText(entry["content"]))
		if role != ai.RoleUser && role != ai.RoleAssistant {
			continue
		}
		if content == "" {
			continue
		}
		out = append(out, HistoryItem{Role: role, Content: clipRunes(content, maxHistoryContent)})
	}
	return out
}

type promptInput struct {
	message      string
	ctx          map[string]any
	cfg          Config
	history      []HistoryItem
	lang         Lang
	fallback     Lang
	troubleshoot bool
	autoHelp     bool
}

// buildChatPrompt assembles the ordered message list for the main chat call.
func buildChatPrompt(in promptInput) []ai.Message {
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: strings.TrimSpace(in.cfg.SystemPrompt)},
		{Role: ai.RoleSystem, Content: languagePolicyMessage(in.fallback)},
		{Role: ai.RoleSystem, Content: languagePinMessage(in.lang, in.fallback)},
	}

	if snapshot := UISnapshotNote(in.ctx); snapshot != "" {
		messages = append(messages,
			ai.Message{Role: ai.RoleSystem, Content: snapshot},
			ai.Message{Role: ai.RoleSystem, Content: uiGuidanceNote},
		)
	}

	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: contextUsageNote})

	if in.troubleshoot {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: troubleshootNote})
	} else {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: conciseNote})
	}

	if in.cfg.IncludeFormContext {
		ctxForPrompt := in.ctx
		if !in.troubleshoot {
			// Do not drag old warnings/errors into normal chat.
			ctxForPrompt = withoutKey(in.ctx, "event")
		}

		// Prefer a compact summary to avoid token exhaustion (helps prevent
		// cut-off answers).
		if summary := ContextSummary(ctxForPrompt, in.lang); summary != "" {
			messages = append(messages, ai.Message{
				Role:    ai.RoleSystem,
				Content: "Current ERP page context (summary, sanitized):\n" + summary,
			})
		}

		// Only include potentially large JSON on manual chats.
		if !in.autoHelp {
			ctxForJSON := withoutKey(ctxForPrompt, "")
			if form, ok := ctxForJSON["form"].(map[string]any); ok {
				form2 := withoutKey(form, "")
				if doc, ok := form2["doc"].(map[string]any); ok {
					form2["doc"] = shrinkDoc(doc, form2["missing_required"])
				}
				ctxForJSON["form"] = form2
			}

			messages = append(messages, ai.Message{
				Role:    ai.RoleSystem,
				Content: "Context JSON (sanitized, may be truncated):\n" + truncateJSON(ctxForJSON, in.cfg.MaxContextKB),
			})
		}
	}

	for _, item := range in.history {
		messages = append(messages, ai.Message{Role: item.Role, Content: item.Content})
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: in.message})
	return messages
}

// withoutKey shallow-copies a map, dropping key when non-empty.
func withoutKey(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if key != "" && k == key {
			continue
		}
		out[k] = v
	}
	return out
}
