package tutor

import "context"

// Config — runtime tutor settings, loaded fresh per request and never
// mutated by the pipeline.
type Config struct {
	Enabled            bool
	AutoOpenOnError    bool
	AutoOpenOnWarning  bool
	IncludeFormContext bool
	IncludeDocValues   bool
	MaxContextKB       int
	Language           string
	SystemPrompt       string
}

// PublicConfig — safe subset for clients (no system prompt, no secrets).
type PublicConfig struct {
	Enabled            bool   `json:"enabled"`
	AutoOpenOnError    bool   `json:"auto_open_on_error"`
	AutoOpenOnWarning  bool   `json:"auto_open_on_warning"`
	IncludeFormContext bool   `json:"include_form_context"`
	IncludeDocValues   bool   `json:"include_doc_values"`
	MaxContextKB       int    `json:"max_context_kb"`
	Language           string `json:"language"`
}

func (c Config) Public() PublicConfig {
	return PublicConfig{
		Enabled:            c.Enabled,
		AutoOpenOnError:    c.AutoOpenOnError,
		AutoOpenOnWarning:  c.AutoOpenOnWarning,
		IncludeFormContext: c.IncludeFormContext,
		IncludeDocValues:   c.IncludeDocValues,
		MaxContextKB:       c.MaxContextKB,
		Language:           c.Language,
	}
}

// ConfigStatus — bootstrap payload for the desk widget.
type ConfigStatus struct {
	Config   PublicConfig `json:"config"`
	AIReady  bool         `json:"ai_ready"`
	Language string       `json:"language"`
}

// Reply — final chat output. ok=false marks disabled/empty/unconfigured
// responses, never a hard error.
type Reply struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}

// HistoryItem — one caller-supplied conversation turn.
type HistoryItem struct {
	Role    string
	Content string
}

// SettingsStore — persistence for tutor settings.
type SettingsStore interface {
	GetConfig(ctx context.Context) (Config, error)
}

// Service — request pipeline orchestration.
type Service interface {
	// Chat runs the full pipeline. rawContext and rawHistory arrive either
	// as decoded JSON structures or as JSON-encoded strings.
	Chat(ctx context.Context, message string, rawContext, rawHistory any) (Reply, error)

	// TutorConfig returns the public settings subset plus provider readiness.
	TutorConfig(ctx context.Context) (ConfigStatus, error)
}
