package v1

import (
	"testing"

	"go-resume-feedback/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("scored feedback yields an overall score", func(t *testing.T) {
		rec := domain.ResumeRecord{
			ID:          "r1",
			CompanyName: "Acme",
			JobTitle:    "Backend Engineer",
			ImagePath:   "r1.jpg",
			Feedback: map[string]any{
				"overallScore": float64(82),
				"content":      map[string]any{"score": float64(80), "tips": []any{}},
			},
		}

		s := summarize(rec)
		assert.Equal(t, "r1", s.ID)
		assert.Equal(t, "Acme", s.CompanyName)
		assert.Equal(t, "r1.jpg", s.ImagePath)
		if assert.NotNil(t, s.OverallScore) {
			assert.Equal(t, 82, *s.OverallScore)
		}
	})

	t.Run("pending feedback has no score", func(t *testing.T) {
		s := summarize(domain.ResumeRecord{ID: "r2", Feedback: nil})
		assert.Nil(t, s.OverallScore)
	})

	t.Run("diagnostic text feedback has no score", func(t *testing.T) {
		s := summarize(domain.ResumeRecord{ID: "r3", Feedback: "model said something unparseable"})
		assert.Nil(t, s.OverallScore)
	})

	t.Run("scored feedback without an overall score stays nil", func(t *testing.T) {
		s := summarize(domain.ResumeRecord{
			ID:       "r4",
			Feedback: map[string]any{"content": map[string]any{"score": float64(70)}},
		})
		assert.Nil(t, s.OverallScore)
	})
}
