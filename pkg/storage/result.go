package storage

import (
	"encoding/json"
	"fmt"
)

// UploadedItem is the canonical description of one stored blob.
type UploadedItem struct {
	Path string
}

// Storage backends answer uploads in several wrapper shapes: a bare
// object, an array whose first element is the object, or an envelope
// with a "file" field. NormalizeUploadResult maps every known wrapper
// onto UploadedItem and rejects anything else explicitly instead of
// passing unrecognized payloads through.
func NormalizeUploadResult(body []byte) (*UploadedItem, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("upload result is not JSON: %w", err)
	}
	return normalizeUploadValue(raw)
}

func normalizeUploadValue(raw any) (*UploadedItem, error) {
	switch v := raw.(type) {
	case []any:
		// Pick the first uploaded item regardless of wrapper shape.
		if len(v) == 0 {
			return nil, fmt.Errorf("upload result is an empty array")
		}
		return normalizeUploadValue(v[0])
	case map[string]any:
		if file, ok := v["file"].(map[string]any); ok {
			return normalizeUploadValue(file)
		}
		for _, key := range []string{"Key", "key", "path", "name"} {
			if p, ok := v[key].(string); ok && p != "" {
				return &UploadedItem{Path: p}, nil
			}
		}
		return nil, fmt.Errorf("upload result object carries no path field")
	default:
		return nil, fmt.Errorf("unrecognized upload result shape %T", raw)
	}
}
