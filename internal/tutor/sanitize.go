package tutor

import "strings"

const (
	redactedMarker  = "[redacted]"
	truncatedMarker = "[truncated]"

	maxSanitizeDepth = 6
	maxListItems     = 200
	maxStringLen     = 4000
)

var sensitiveKeyParts = []string{
	"password",
	"passwd",
	"pwd",
	"token",
	"secret",
	"api_key",
	"apikey",
	"authorization",
	"auth",
	"private_key",
	"signature",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// Sanitize walks an arbitrary decoded-JSON tree, redacts values under
// sensitive keys and bounds the output size regardless of input shape.
// Pure transform, the input is never modified.
func Sanitize(value any) any {
	return sanitize(value, 0)
}

func sanitize(value any, depth int) any {
	if depth > maxSanitizeDepth {
		return truncatedMarker
	}

	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if isSensitiveKey(key) {
				out[key] = redactedMarker
			} else {
				out[key] = sanitize(item, depth+1)
			}
		}
		return out

	case []any:
		items := v
		if len(items) > maxListItems {
			items = items[:maxListItems]
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, sanitize(item, depth+1))
		}
		return out

	case string:
		if len([]rune(v)) > maxStringLen {
			return string([]rune(v)[:maxStringLen]) + "…"
		}
		return v

	default:
		return value
	}
}
