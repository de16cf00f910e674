package tutor

import (
	"context"
	"database/sql"
	"errors"
)

const (
	defaultMaxContextKB = 24
	minMaxContextKB     = 4
	maxMaxContextKB     = 256
)

type settingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) SettingsStore {
	return &settingsRepo{db: db}
}

// GetConfig reads the single settings row fresh on every request so admin
// changes apply without a restart. A missing row yields the defaults.
func (r *settingsRepo) GetConfig(ctx context.Context) (Config, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT enabled, auto_open_on_error, auto_open_on_warning,
		       include_form_context, include_doc_values,
		       max_context_kb, language, system_prompt
		FROM tutor_settings
		LIMIT 1
	`)

	var cfg Config
	err := row.Scan(
		&cfg.Enabled,
		&cfg.AutoOpenOnError,
		&cfg.AutoOpenOnWarning,
		&cfg.IncludeFormContext,
		&cfg.IncludeDocValues,
		&cfg.MaxContextKB,
		&cfg.Language,
		&cfg.SystemPrompt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	return applyConfigDefaults(cfg), nil
}

func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		AutoOpenOnError:    true,
		AutoOpenOnWarning:  true,
		IncludeFormContext: true,
		IncludeDocValues:   true,
		MaxContextKB:       defaultMaxContextKB,
		Language:           string(LangUZ),
		SystemPrompt:       DefaultSystemPrompt,
	}
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.MaxContextKB == 0 {
		cfg.MaxContextKB = defaultMaxContextKB
	}
	if cfg.MaxContextKB < minMaxContextKB {
		cfg.MaxContextKB = minMaxContextKB
	}
	if cfg.MaxContextKB > maxMaxContextKB {
		cfg.MaxContextKB = maxMaxContextKB
	}
	if cfg.Language == "" {
		cfg.Language = string(LangUZ)
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return cfg
}
