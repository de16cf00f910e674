package ai

import (
	"context"
	"errors"
)

// AI — the external intelligence; knows nothing about ERP pages or the DB.
type AI interface {
	// Complete runs a chat completion. maxTokens == 0 means "let the
	// client pick", which walks the fallback cap ladder.
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)

	// Ready reports whether provider credentials currently resolve.
	Ready() bool
}

// Message — common dialog format for AI
type Message struct {
	Role    string // "user" | "assistant" | "system"
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrorKind classifies provider failures so callers don't have to sniff
// error strings themselves.
type ErrorKind int

const (
	// KindProvider — any completion failure that is not one of the kinds below.
	KindProvider ErrorKind = iota
	// KindUnavailable — no usable API key / model configured.
	KindUnavailable
	// KindTokenLimit — the provider rejected the requested max token cap.
	KindTokenLimit
)

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return KindProvider, false
}

// IsUnavailable reports whether err means "provider not configured".
func IsUnavailable(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnavailable
}

// IsTokenLimit reports whether err is a token-cap rejection.
func IsTokenLimit(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTokenLimit
}
