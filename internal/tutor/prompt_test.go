package tutor

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erplabs/ai-tutor-bridge/internal/ai"
)

func TestShrinkDoc(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"_internal":  "hidden",
		"__islocal":  true,
		"empty":      nil,
		"child_rows": []any{map[string]any{"qty": 1}},
		"meta":       map[string]any{"owner": "admin"},
		"long_text":  strings.Repeat("x", 400),
	}
	for i := 0; i < 80; i++ {
		doc[fmt.Sprintf("field_%02d", i)] = i
	}
	required := []any{
		map[string]any{"fieldname": "req_a"},
		map[string]any{"fieldname": "req_b"},
		map[string]any{"fieldname": "req_c"},
		map[string]any{"fieldname": "req_d"},
		map[string]any{"fieldname": "req_e"},
	}
	for _, item := range required {
		doc[item.(map[string]any)["fieldname"].(string)] = "set"
	}

	out := shrinkDoc(doc, required)

	assert.Len(t, out, maxDocFields)
	for _, key := range []string{"req_a", "req_b", "req_c", "req_d", "req_e"} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "_internal")
	assert.NotContains(t, out, "__islocal")
	assert.NotContains(t, out, "empty")
	assert.NotContains(t, out, "child_rows")
	assert.NotContains(t, out, "meta")
	assert.NotContains(t, out, "long_text")
}

func TestShrinkDoc_SmallDocKeptWhole(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"name": "ITEM-001", "qty": float64(3)}
	out := shrinkDoc(doc, nil)

	assert.Equal(t, doc, out)
}

func TestTruncateJSON_WithinLimit(t *testing.T) {
	t.Parallel()

	out := truncateJSON(map[string]any{"a": "b"}, 4)
	assert.JSONEq(t, `{"a":"b"}`, out)
}

func TestTruncateJSON_BlanksLargeKeys(t *testing.T) {
	t.Parallel()

	obj := map[string]any{
		"page_title": "Item",
		"doc":        strings.Repeat("x", 8000),
	}

	out := truncateJSON(obj, 4)
	assert.LessOrEqual(t, len(out), 4*1024)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, truncatedMarker, decoded["doc"])
	assert.Equal(t, "Item", decoded["page_title"])
}

func TestTruncateJSON_HardByteCap(t *testing.T) {
	t.Parallel()

	// No known-large keys to blank, so the hard byte truncation applies.
	obj := map[string]any{"blob": strings.Repeat("я", 8000)}

	out := truncateJSON(obj, 4)
	assert.LessOrEqual(t, len(out), 4*1024)
	assert.True(t, strings.HasPrefix(out, `{"blob":`))
}

func TestTruncateJSON_SerializationFailure(t *testing.T) {
	t.Parallel()

	out := truncateJSON(map[string]any{"bad": func() {}}, 4)
	assert.JSONEq(t, serializationFailedJSON, out)
}

func TestTruncateJSON_MinimumOneKB(t *testing.T) {
	t.Parallel()

	out := truncateJSON(map[string]any{"blob": strings.Repeat("x", 5000)}, 0)
	assert.LessOrEqual(t, len(out), 1024)
}

func TestParseHistory(t *testing.T) {
	t.Parallel()

	raw := []any{
		map[string]any{"role": "user", "content": "first"},
		map[string]any{"role": "system", "content": "skip me"},
		map[string]any{"role": "assistant", "content": ""},
		"not a map",
		map[string]any{"role": "assistant", "content": strings.Repeat("y", 3000)},
	}

	items := parseHistory(raw)
	require.Len(t, items, 2)
	assert.Equal(t, HistoryItem{Role: "user", Content: "first"}, items[0])
	assert.Equal(t, "assistant", items[1].Role)
	assert.Len(t, []rune(items[1].Content), maxHistoryContent)
}

func TestParseHistory_KeepsLastTwenty(t *testing.T) {
	t.Parallel()

	var raw []any
	for i := 0; i < 30; i++ {
		raw = append(raw, map[string]any{"role": "user", "content": fmt.Sprintf("msg %d", i)})
	}

	items := parseHistory(raw)
	require.Len(t, items, maxHistoryItems)
	assert.Equal(t, "msg 10", items[0].Content)
	assert.Equal(t, "msg 29", items[19].Content)
}

func TestParseHistory_NonList(t *testing.T) {
	t.Parallel()

	assert.Nil(t, parseHistory("oops"))
	assert.Nil(t, parseHistory(nil))
	assert.Nil(t, parseHistory(map[string]any{"role": "user"}))
}

func TestBuildChatPrompt_Order(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	messages := buildChatPrompt(promptInput{
		message:  "How do I add a customer?",
		ctx:      sampleFormContext(),
		cfg:      cfg,
		history:  []HistoryItem{{Role: "user", Content: "earlier question"}},
		lang:     LangEN,
		fallback: LangUZ,
	})

	require.GreaterOrEqual(t, len(messages), 8)

	assert.Equal(t, ai.RoleSystem, messages[0].Role)
	assert.Equal(t, strings.TrimSpace(cfg.SystemPrompt), messages[0].Content)
	assert.Contains(t, messages[1].Content, "LANGUAGE POLICY")
	assert.Contains(t, messages[2].Content, "For this response: reply in English (en)")

	last := messages[len(messages)-1]
	assert.Equal(t, ai.RoleUser, last.Role)
	assert.Equal(t, "How do I add a customer?", last.Content)

	prev := messages[len(messages)-2]
	assert.Equal(t, ai.RoleUser, prev.Role)
	assert.Equal(t, "earlier question", prev.Content)
}

func TestBuildChatPrompt_ConciseVsTroubleshoot(t *testing.T) {
	t.Parallel()

	base := promptInput{
		message:  "question",
		ctx:      map[string]any{},
		cfg:      DefaultConfig(),
		lang:     LangUZ,
		fallback: LangUZ,
	}

	concise := joinContents(buildChatPrompt(base))
	assert.Contains(t, concise, "Reply concisely")
	assert.NotContains(t, concise, "structured, step-by-step answer")

	base.troubleshoot = true
	troubleshoot := joinContents(buildChatPrompt(base))
	assert.Contains(t, troubleshoot, "structured, step-by-step answer")
}

func TestBuildChatPrompt_StripsEventForCasualChat(t *testing.T) {
	t.Parallel()

	in := promptInput{
		message:  "what is this page?",
		ctx:      sampleFormContext(),
		cfg:      DefaultConfig(),
		lang:     LangEN,
		fallback: LangUZ,
	}

	casual := joinContents(buildChatPrompt(in))
	assert.NotContains(t, casual, "Validation Error")

	in.troubleshoot = true
	trouble := joinContents(buildChatPrompt(in))
	assert.Contains(t, trouble, "Validation Error")
}

func TestBuildChatPrompt_ContextJSONOnlyForManualChats(t *testing.T) {
	t.Parallel()

	in := promptInput{
		message:      "explain",
		ctx:          sampleFormContext(),
		cfg:          DefaultConfig(),
		lang:         LangEN,
		fallback:     LangUZ,
		troubleshoot: true,
	}

	manual := joinContents(buildChatPrompt(in))
	assert.Contains(t, manual, "Context JSON (sanitized, may be truncated):")

	in.autoHelp = true
	auto := joinContents(buildChatPrompt(in))
	assert.NotContains(t, auto, "Context JSON")
}

func TestBuildChatPrompt_NoFormContext(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.IncludeFormContext = false

	out := joinContents(buildChatPrompt(promptInput{
		message:  "hi there, what next?",
		ctx:      sampleFormContext(),
		cfg:      cfg,
		lang:     LangEN,
		fallback: LangUZ,
	}))

	assert.NotContains(t, out, "Current ERP page context")
	assert.NotContains(t, out, "Context JSON")
}

func TestBuildChatPrompt_UISnapshotConditional(t *testing.T) {
	t.Parallel()

	in := promptInput{
		message:  "question",
		ctx:      map[string]any{},
		cfg:      DefaultConfig(),
		lang:     LangUZ,
		fallback: LangUZ,
	}

	out := joinContents(buildChatPrompt(in))
	assert.NotContains(t, out, "UI SNAPSHOT")
	assert.NotContains(t, out, "UI GUIDANCE")

	in.ctx = map[string]any{
		"ui": map[string]any{
			"page_actions": map[string]any{"primary_action": "Добавить"},
		},
	}
	out = joinContents(buildChatPrompt(in))
	assert.Contains(t, out, "UI SNAPSHOT")
	assert.Contains(t, out, "UI GUIDANCE")
}

func joinContents(messages []ai.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n---\n")
	}
	return b.String()
}
