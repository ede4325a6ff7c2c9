// Package masking redacts secret material before it reaches the audit
// trail. Audit metadata is operator-visible, so passwords, session
// tokens and reset codes must never land there in the clear.
package masking

import "strings"

const maskToken = "****"

var sensitiveFragments = []string{"password", "token", "secret", "code", "credential"}

// MaskSecret redacts a secret while keeping a minimal suffix for auditing.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// SensitiveKey reports whether a metadata key names secret material.
func SensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of the metadata with secret values masked.
// Nested maps and slices are walked; non-string leaves pass through.
func Sanitize(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		out[trimmedKey] = sanitizeValue(trimmedKey, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if SensitiveKey(key) {
			return MaskSecret(cast)
		}
		return cast
	case map[string]any:
		return Sanitize(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, sanitizeValue(key, item))
		}
		return out
	default:
		if SensitiveKey(key) {
			return maskToken
		}
		return value
	}
}
