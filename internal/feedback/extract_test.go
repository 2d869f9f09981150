package feedback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-resume-feedback/internal/feedback"
)

func TestExtractText(t *testing.T) {
	cases := []struct {
		name  string
		reply any
		want  string
	}{
		{
			name:  "plain string passes through",
			reply: "hello",
			want:  "hello",
		},
		{
			name:  "nested message content string",
			reply: map[string]any{"message": map[string]any{"content": "hi"}},
			want:  "hi",
		},
		{
			name: "nested message content sequence",
			reply: map[string]any{"message": map[string]any{
				"content": []any{map[string]any{"text": "yo"}},
			}},
			want: "yo",
		},
		{
			name:  "opaque object serialized whole",
			reply: map[string]any{"foo": 1},
			want:  `{"foo":1}`,
		},
		{
			name:  "nil degrades to empty string",
			reply: nil,
			want:  "",
		},
		{
			name:  "empty content sequence falls back to serialization",
			reply: map[string]any{"message": map[string]any{"content": []any{}}},
			want:  `{"message":{"content":[]}}`,
		},
		{
			name: "sequence element without text falls back to serialization",
			reply: map[string]any{"message": map[string]any{
				"content": []any{map[string]any{"type": "image"}},
			}},
			want: `{"message":{"content":[{"type":"image"}]}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, feedback.ExtractText(tc.reply))
		})
	}
}
