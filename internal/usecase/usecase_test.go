package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-resume-feedback/internal/domain"
	"go-resume-feedback/internal/usecase"
	"go-resume-feedback/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock collaborators

type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) Save(ctx context.Context, rec *domain.ResumeRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockResumeRepo) Get(ctx context.Context, id string) (*domain.ResumeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeRecord), args.Error(1)
}

func (m *MockResumeRepo) List(ctx context.Context) ([]domain.ResumeRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResumeRecord), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Read(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, pdf []byte) ([]byte, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, rec *domain.ResumeRecord) (any, error) {
	args := m.Called(ctx, rec)
	return args.Get(0), args.Error(1)
}

type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) AnalyzeDocument(ctx context.Context, document []byte, instructions string) (any, error) {
	args := m.Called(ctx, document, instructions)
	return args.Get(0), args.Error(1)
}

type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionProvider) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func submitRequest() *domain.SubmitRequest {
	return &domain.SubmitRequest{
		CompanyName:    "Acme",
		JobTitle:       "Backend Engineer",
		JobDescription: "Build Go services",
		FileName:       "resume.pdf",
		File:           []byte("%PDF-1.4 fake"),
	}
}

func TestSubmitPipeline(t *testing.T) {
	t.Run("placeholder is persisted before feedback is finalized", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("abc.pdf", nil)
		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/jpeg").Return("abc.jpg", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return([]byte("jpeg"), nil)
		resolver.On("Resolve", mock.Anything, mock.Anything).
			Return(`{"overallScore": 88, "tone_and_style": {"score": 91, "tips": []}}`, nil)

		var saved []any
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.ResumeRecord")).Return(nil).Run(func(args mock.Arguments) {
			rec := args.Get(1).(*domain.ResumeRecord)
			saved = append(saved, rec.Feedback)
		})

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		rec, err := uc.Submit(context.Background(), submitRequest())

		assert.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "abc.pdf", rec.ResumePath)
		assert.Equal(t, "abc.jpg", rec.ImagePath)

		// Two writes: placeholder first, finalized second.
		assert.Len(t, saved, 2)
		assert.Equal(t, "", saved[0])

		final, ok := saved[1].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, float64(88), final["overallScore"])
		// Legacy spelling is mirrored onto the canonical key and kept.
		assert.Contains(t, final, "toneAndStyle")
		assert.Contains(t, final, "tone_and_style")
	})

	t.Run("unparseable reply text is kept verbatim", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("x", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return([]byte("jpeg"), nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		resolver.On("Resolve", mock.Anything, mock.Anything).
			Return("I'm sorry, I cannot analyze this document.", nil)

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		rec, err := uc.Submit(context.Background(), submitRequest())

		assert.NoError(t, err)
		assert.Equal(t, "I'm sorry, I cannot analyze this document.", rec.Feedback)
	})

	t.Run("non-object JSON reply stays diagnostic text", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("x", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return([]byte("jpeg"), nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		// Parses as JSON, but a scalar or array is not a feedback
		// object; the record must hold either an object or a string.
		resolver.On("Resolve", mock.Anything, mock.Anything).Return("[1,2]", nil)

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		rec, err := uc.Submit(context.Background(), submitRequest())

		assert.NoError(t, err)
		assert.Equal(t, "[1,2]", rec.Feedback)
	})

	t.Run("empty reply keeps the placeholder and reports failure", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("x", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return([]byte("jpeg"), nil)
		resolver.On("Resolve", mock.Anything, mock.Anything).Return("", nil)

		saves := 0
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) { saves++ })

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		_, err := uc.Submit(context.Background(), submitRequest())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
		assert.Equal(t, 1, saves, "only the placeholder write should happen")
	})

	t.Run("object reply from the fallback provider is normalized and saved", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("x", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return([]byte("jpeg"), nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(map[string]any{
			"overall_score": 72,
			"ATS":           map[string]any{"score": 70, "tips": []any{}},
		}, nil)

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		rec, err := uc.Submit(context.Background(), submitRequest())

		assert.NoError(t, err)
		final := rec.Feedback.(map[string]any)
		assert.Equal(t, 72, final["overallScore"])
	})

	t.Run("upload failure aborts before any persistence", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").
			Return("", errors.New("bucket unreachable"))

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		_, err := uc.Submit(context.Background(), submitRequest())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Upload failed")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rasterizer failure surfaces as a conversion error", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		raster := new(MockRasterizer)
		resolver := new(MockResolver)

		blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("abc.pdf", nil)
		raster.On("Rasterize", mock.Anything, mock.Anything).Return(nil, errors.New("chrome crashed"))

		uc := usecase.NewResumeUsecase(repo, blobs, raster, resolver)
		_, err := uc.Submit(context.Background(), submitRequest())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Conversion failed")
	})
}

func TestGetResume(t *testing.T) {
	t.Run("missing record maps to not found", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("Get", mock.Anything, "nope").Return(nil, domain.ErrRecordNotFound)

		uc := usecase.NewResumeUsecase(repo, nil, nil, nil)
		_, err := uc.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("placeholder feedback reads back as absent", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("Get", mock.Anything, "r1").Return(&domain.ResumeRecord{ID: "r1", Feedback: ""}, nil)

		uc := usecase.NewResumeUsecase(repo, nil, nil, nil)
		rec, err := uc.Get(context.Background(), "r1")
		assert.NoError(t, err)
		assert.Nil(t, rec.Feedback)
	})

	t.Run("legacy persisted shapes are fixed up on read", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("Get", mock.Anything, "r2").Return(&domain.ResumeRecord{
			ID: "r2",
			Feedback: map[string]any{
				"feedback": map[string]any{
					"overall_score": float64(81),
				},
			},
		}, nil)

		uc := usecase.NewResumeUsecase(repo, nil, nil, nil)
		rec, err := uc.Get(context.Background(), "r2")
		assert.NoError(t, err)

		fb := rec.Feedback.(map[string]any)
		assert.Equal(t, float64(81), fb["overallScore"])
		assert.NotContains(t, fb, "feedback")
	})

	t.Run("stringified feedback is parsed on read", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("Get", mock.Anything, "r3").Return(&domain.ResumeRecord{
			ID:       "r3",
			Feedback: `{"overallScore": 55}`,
		}, nil)

		uc := usecase.NewResumeUsecase(repo, nil, nil, nil)
		rec, err := uc.Get(context.Background(), "r3")
		assert.NoError(t, err)

		fb := rec.Feedback.(map[string]any)
		assert.Equal(t, float64(55), fb["overallScore"])
	})
}

func TestGetResumeFiles(t *testing.T) {
	rec := &domain.ResumeRecord{ID: "r1", ResumePath: "r1.pdf", ImagePath: "r1.jpg"}

	t.Run("returns the stored PDF", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		repo.On("Get", mock.Anything, "r1").Return(rec, nil)
		blobs.On("Read", mock.Anything, "r1.pdf").Return([]byte("pdf bytes"), nil)

		uc := usecase.NewResumeUsecase(repo, blobs, nil, nil)
		data, err := uc.GetResumeFile(context.Background(), "r1")
		assert.NoError(t, err)
		assert.Equal(t, []byte("pdf bytes"), data)
	})

	t.Run("missing blob is distinct from missing record", func(t *testing.T) {
		repo := new(MockResumeRepo)
		blobs := new(MockBlobStore)
		repo.On("Get", mock.Anything, "r1").Return(rec, nil)
		blobs.On("Read", mock.Anything, "r1.jpg").
			Return(nil, fmt.Errorf("%w: r1.jpg", storage.ErrNotFound))

		uc := usecase.NewResumeUsecase(repo, blobs, nil, nil)
		_, err := uc.GetPreviewImage(context.Background(), "r1")
		assert.ErrorIs(t, err, domain.ErrImageFileNotFound)
	})
}

func TestListResumes(t *testing.T) {
	repo := new(MockResumeRepo)
	repo.On("List", mock.Anything).Return([]domain.ResumeRecord{
		{ID: "a", Feedback: ""},
		{ID: "b", Feedback: map[string]any{"overallScore": float64(90)}},
	}, nil)

	uc := usecase.NewResumeUsecase(repo, nil, nil, nil)
	records, err := uc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Nil(t, records[0].Feedback)
	assert.Equal(t, float64(90), records[1].Feedback.(map[string]any)["overallScore"])
}

func TestResolveProviderChain(t *testing.T) {
	rec := &domain.ResumeRecord{
		ID:             "r1",
		JobTitle:       "SRE",
		CompanyName:    "Acme",
		JobDescription: "Keep things up",
		ResumePath:     "r1.pdf",
	}

	t.Run("primary reply text wins when the provider answers", func(t *testing.T) {
		primary := new(MockChatProvider)
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		blobs.On("Read", mock.Anything, "r1.pdf").Return([]byte("pdf"), nil)
		primary.On("AnalyzeDocument", mock.Anything, mock.Anything, mock.Anything).Return(map[string]any{
			"message": map[string]any{"content": `{"overallScore": 95}`},
		}, nil)

		uc := usecase.NewAnalysisUsecase(primary, secondary, blobs)
		reply, err := uc.Resolve(context.Background(), rec)

		assert.NoError(t, err)
		assert.Equal(t, `{"overallScore": 95}`, reply)
		secondary.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("primary failure falls back to the local provider", func(t *testing.T) {
		primary := new(MockChatProvider)
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		blobs.On("Read", mock.Anything, "r1.pdf").Return([]byte("pdf"), nil)
		primary.On("AnalyzeDocument", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("402 insufficient credits"))
		secondary.On("Complete", mock.Anything, mock.Anything).
			Return(`{"overallScore": 77, "content": {"score": 81, "tips": []}}`, nil)

		uc := usecase.NewAnalysisUsecase(primary, secondary, blobs)
		reply, err := uc.Resolve(context.Background(), rec)
		assert.NoError(t, err)

		fb := reply.(map[string]any)
		assert.Equal(t, float64(77), fb["overallScore"])
		// Categories the model skipped get a default score and no tips.
		ats := fb["ATS"].(map[string]any)
		assert.Equal(t, 70, ats["score"])
		assert.Empty(t, ats["tips"])
		content := fb["content"].(map[string]any)
		assert.Equal(t, float64(81), content["score"])
	})

	t.Run("fenced JSON from the local model is parsed", func(t *testing.T) {
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		blobs.On("Read", mock.Anything, "r1.pdf").Return(nil, errors.New("gone"))
		secondary.On("Complete", mock.Anything, mock.Anything).
			Return("```json\n{\"overallScore\": 68}\n```", nil)

		uc := usecase.NewAnalysisUsecase(nil, secondary, blobs)
		reply, err := uc.Resolve(context.Background(), rec)
		assert.NoError(t, err)
		assert.Equal(t, float64(68), reply.(map[string]any)["overallScore"])
	})

	t.Run("non-JSON local output yields the synthesized default", func(t *testing.T) {
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		blobs.On("Read", mock.Anything, "r1.pdf").Return(nil, errors.New("gone"))
		secondary.On("Complete", mock.Anything, mock.Anything).Return("Sure! Here is my analysis...", nil)

		uc := usecase.NewAnalysisUsecase(nil, secondary, blobs)
		reply, err := uc.Resolve(context.Background(), rec)
		assert.NoError(t, err)

		fb := reply.(map[string]any)
		assert.Equal(t, 65, fb["overallScore"])
		for _, cat := range []string{"ATS", "toneAndStyle", "content", "structure", "skills"} {
			block := fb[cat].(map[string]any)
			score := block["score"].(int)
			assert.GreaterOrEqual(t, score, 60)
			assert.LessOrEqual(t, score, 70)
			assert.NotEmpty(t, block["tips"])
		}
		tips := fb["tips"].([]any)
		assert.NotEmpty(t, tips)
		assert.Contains(t, tips[0].(map[string]any)["tip"], "non-JSON")
	})

	t.Run("local transport failure also yields the synthesized default", func(t *testing.T) {
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		blobs.On("Read", mock.Anything, "r1.pdf").Return(nil, errors.New("gone"))
		secondary.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

		uc := usecase.NewAnalysisUsecase(nil, secondary, blobs)
		reply, err := uc.Resolve(context.Background(), rec)
		assert.NoError(t, err)
		assert.Equal(t, 65, reply.(map[string]any)["overallScore"])
	})

	t.Run("resume text feeds the fallback prompt when extractable", func(t *testing.T) {
		secondary := new(MockCompletionProvider)
		blobs := new(MockBlobStore)

		// Not a parseable PDF; extraction fails quietly and the prompt
		// goes out without resume text.
		blobs.On("Read", mock.Anything, "r1.pdf").Return([]byte("not a pdf"), nil)
		secondary.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return len(prompt) > 0
		})).Return(`{"overallScore": 70}`, nil)

		uc := usecase.NewAnalysisUsecase(nil, secondary, blobs)
		_, err := uc.Resolve(context.Background(), rec)
		assert.NoError(t, err)
		secondary.AssertCalled(t, "Complete", mock.Anything, mock.Anything)
	})
}
