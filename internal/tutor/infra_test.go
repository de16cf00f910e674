package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyConfigDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Config
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "zero values filled",
			in:   Config{},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, defaultMaxContextKB, cfg.MaxContextKB)
				assert.Equal(t, "uz", cfg.Language)
				assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
			},
		},
		{
			name: "context kb clamped low",
			in:   Config{MaxContextKB: 1},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, minMaxContextKB, cfg.MaxContextKB)
			},
		},
		{
			name: "context kb clamped high",
			in:   Config{MaxContextKB: 4096},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, maxMaxContextKB, cfg.MaxContextKB)
			},
		},
		{
			name: "custom values preserved",
			in:   Config{MaxContextKB: 64, Language: "ru", SystemPrompt: "custom"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, 64, cfg.MaxContextKB)
				assert.Equal(t, "ru", cfg.Language)
				assert.Equal(t, "custom", cfg.SystemPrompt)
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			testCase.want(t, applyConfigDefaults(testCase.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.IncludeFormContext)
	assert.Equal(t, defaultMaxContextKB, cfg.MaxContextKB)
	assert.Equal(t, "uz", cfg.Language)
	assert.NotEmpty(t, cfg.SystemPrompt)
}

func TestConfigPublicSubset(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	public := cfg.Public()

	assert.Equal(t, cfg.Enabled, public.Enabled)
	assert.Equal(t, cfg.MaxContextKB, public.MaxContextKB)
	assert.Equal(t, cfg.Language, public.Language)
}
