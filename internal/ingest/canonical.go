package ingest

import (
	"bytes"
	"encoding/json"
	"sort"
)

// CanonicalizeArguments returns raw's JSON re-encoded with object keys
// sorted and whitespace normalized, so two semantically-equal tool call
// argument payloads compare equal byte-for-byte (spec GLOSSARY: "Canonical
// form (of arguments)"). Invalid JSON is returned unchanged — callers treat
// a canonicalization failure as "arguments differ" rather than panicking.
func CanonicalizeArguments(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	out, err := json.Marshal(canonicalize(v))
	if err != nil {
		return raw
	}
	return out
}

// canonicalize recursively sorts map keys so json.Marshal emits them in a
// stable order; Go's encoding/json already sorts map[string]any keys, but
// we normalize explicitly to document the invariant and to survive a
// future switch to an order-preserving JSON library.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[k] = canonicalize(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return t
	}
}

// ArgumentsEqual reports whether two tool calls' arguments are equal after
// canonicalization (spec §4.5 RETRY_LOOP).
func ArgumentsEqual(a, b json.RawMessage) bool {
	return bytes.Equal(CanonicalizeArguments(a), CanonicalizeArguments(b))
}
