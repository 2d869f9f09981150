package feedback_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-resume-feedback/internal/feedback"
)

func TestNormalizeNoFeedback(t *testing.T) {
	assert.Nil(t, feedback.Normalize(nil))
	assert.Nil(t, feedback.Normalize(""))
}

func TestNormalizeUnparseableStringPreserved(t *testing.T) {
	// Deliberate policy: raw diagnostic text stays visible to the user.
	raw := "the model refused to answer"
	assert.Equal(t, raw, feedback.Normalize(raw))
}

func TestNormalizeParsesJSONString(t *testing.T) {
	got := feedback.Normalize(`{"overall_score": 81}`)
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(81), m["overallScore"])
	assert.Equal(t, float64(81), m["overall_score"], "legacy key must survive")
}

func TestNormalizeObjectAliases(t *testing.T) {
	t.Run("tone_and_style copied when canonical absent", func(t *testing.T) {
		tone := map[string]any{"score": float64(70)}
		m := feedback.NormalizeObject(map[string]any{"tone_and_style": tone})
		assert.Equal(t, tone, m["toneAndStyle"])
		assert.Equal(t, tone, m["tone_and_style"])
	})

	t.Run("canonical overallScore wins over legacy", func(t *testing.T) {
		m := feedback.NormalizeObject(map[string]any{
			"overallScore":  float64(90),
			"overall_score": float64(10),
		})
		assert.Equal(t, float64(90), m["overallScore"])
	})

	t.Run("explicit zero overallScore is not replaced", func(t *testing.T) {
		m := feedback.NormalizeObject(map[string]any{
			"overallScore":  float64(0),
			"overall_score": float64(55),
		})
		assert.Equal(t, float64(0), m["overallScore"])
	})

	t.Run("unrecognized keys pass through", func(t *testing.T) {
		m := feedback.NormalizeObject(map[string]any{
			"overall_score": float64(42),
			"vendorExtra":   "kept",
		})
		assert.Equal(t, "kept", m["vendorExtra"])
	})
}

func TestNormalizeObjectUnwrapsSingleLevel(t *testing.T) {
	inner := map[string]any{"overallScore": float64(77)}
	m := feedback.NormalizeObject(map[string]any{"feedback": inner})
	assert.Equal(t, float64(77), m["overallScore"])
}

func TestNormalizeIdempotent(t *testing.T) {
	in := map[string]any{
		"tone_and_style": map[string]any{"score": float64(60)},
		"overall_score":  float64(72),
		"skills": map[string]any{
			"score":   float64(80),
			"matched": []any{"go", "redis"},
		},
	}
	once := feedback.Normalize(in)
	twice := feedback.Normalize(once)
	assert.Equal(t, once, twice)
}

func TestNormalizeSerializeRoundTrip(t *testing.T) {
	in := map[string]any{
		"overall_score": float64(64),
		"content":       map[string]any{"score": float64(70), "tips": []any{}},
		"custom":        "opaque",
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	fromString := feedback.Normalize(string(raw))
	direct := feedback.Normalize(map[string]any{
		"overall_score": float64(64),
		"content":       map[string]any{"score": float64(70), "tips": []any{}},
		"custom":        "opaque",
	})
	assert.Equal(t, direct, fromString)
}

func TestDecode(t *testing.T) {
	t.Run("typed view of a normalized map", func(t *testing.T) {
		m := feedback.NormalizeObject(map[string]any{
			"overall_score": float64(82),
			"skills": map[string]any{
				"score":   float64(75),
				"tips":    []any{map[string]any{"type": "improve", "tip": "add metrics"}},
				"missing": []any{"kubernetes"},
			},
		})
		rec, ok := feedback.Decode(m)
		require.True(t, ok)
		require.NotNil(t, rec.OverallScore)
		assert.Equal(t, 82, *rec.OverallScore)
		require.NotNil(t, rec.Skills)
		require.NotNil(t, rec.Skills.Score)
		assert.Equal(t, 75, *rec.Skills.Score)
		require.Len(t, rec.Skills.Tips, 1)
		assert.Equal(t, "improve", rec.Skills.Tips[0].Type)
		assert.Equal(t, []string{"kubernetes"}, rec.Skills.Missing)
	})

	t.Run("empty map is a legal empty record", func(t *testing.T) {
		rec, ok := feedback.Decode(map[string]any{})
		require.True(t, ok)
		assert.Nil(t, rec.OverallScore)
	})

	t.Run("diagnostic string does not decode", func(t *testing.T) {
		_, ok := feedback.Decode("not json")
		assert.False(t, ok)
	})
}
