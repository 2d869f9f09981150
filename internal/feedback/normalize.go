package feedback

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"go-resume-feedback/internal/domain"
)

// Some producers emit snake_case variants of canonical feedback keys.
// Reconciliation is table-driven: the canonical key is filled from the
// legacy key when missing, and the legacy key is never removed.
// replaceFalsy controls whether a present-but-falsy canonical value
// (0, "", false) is also replaced; overallScore keeps an explicit 0.
type keyAlias struct {
	legacy       string
	canonical    string
	replaceFalsy bool
}

var keyAliases = []keyAlias{
	{legacy: "tone_and_style", canonical: "toneAndStyle", replaceFalsy: true},
	{legacy: "overall_score", canonical: "overallScore", replaceFalsy: false},
}

// Normalize coerces a raw candidate value into either a canonical
// feedback object (map[string]any), an opaque diagnostic string, or
// nil for "no feedback".
//
// Policy for unparseable string input: the original string is returned
// verbatim so the viewer can render it as diagnostic text. This is the
// single canonical behavior at every call site.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(val), &parsed); err != nil {
			return val
		}
		return Normalize(parsed)
	case map[string]any:
		return NormalizeObject(val)
	default:
		// Non-string primitives carry no feedback structure; pass
		// through opaquely.
		return v
	}
}

// NormalizeObject reconciles key-naming variants on a feedback object
// and unwraps one level of persistence double-wrapping. The unwrap is
// deliberately single-level; readers of possibly older records invoke
// normalization again defensively. The input is augmented in place:
// canonical keys are added, non-canonical keys are kept, unrecognized
// keys pass through untouched.
func NormalizeObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	eff := m
	if nested, ok := m["feedback"].(map[string]any); ok {
		eff = nested
	}
	for _, alias := range keyAliases {
		legacyVal, present := eff[alias.legacy]
		if !present || legacyVal == nil {
			continue
		}
		if alias.replaceFalsy {
			if isFalsy(eff[alias.canonical]) && !isFalsy(legacyVal) {
				eff[alias.canonical] = legacyVal
			}
			continue
		}
		if cur, ok := eff[alias.canonical]; !ok || cur == nil {
			eff[alias.canonical] = legacyVal
		}
	}
	return eff
}

// Decode projects a normalized feedback value onto the typed record.
// Strings (diagnostic feedback) and nil decode to (nil, false); a map
// with every field absent is a legal, empty record.
func Decode(v any) (*domain.FeedbackRecord, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	var rec domain.FeedbackRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, false
	}
	if err := dec.Decode(m); err != nil {
		return nil, false
	}
	return &rec, true
}

func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	default:
		return false
	}
}
