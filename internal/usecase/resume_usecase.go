package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go-resume-feedback/internal/domain"
	"go-resume-feedback/internal/feedback"
	"go-resume-feedback/pkg/apperror"
	"go-resume-feedback/pkg/logger"
	"go-resume-feedback/pkg/storage"
)

type resumeUsecase struct {
	repo     domain.ResumeRepository
	blobs    domain.BlobStore
	raster   domain.Rasterizer
	resolver domain.FeedbackResolver
}

// NewResumeUsecase creates the submission pipeline usecase.
func NewResumeUsecase(repo domain.ResumeRepository, blobs domain.BlobStore, raster domain.Rasterizer, resolver domain.FeedbackResolver) domain.ResumeUsecase {
	return &resumeUsecase{repo: repo, blobs: blobs, raster: raster, resolver: resolver}
}

// Submit runs the full pipeline: upload PDF, render and upload the
// preview image, persist a placeholder record, resolve AI feedback,
// then finalize the record. The placeholder write happens before the
// AI call on purpose: if analysis dies, the uploads and metadata are
// already durable and the record simply keeps its empty feedback.
func (u *resumeUsecase) Submit(ctx context.Context, req *domain.SubmitRequest) (*domain.ResumeRecord, error) {
	id := uuid.NewString()
	log := logger.With("component", "resume", "resume_id", id)

	resumePath, err := u.blobs.Upload(ctx, id+".pdf", req.File, "application/pdf")
	if err != nil {
		log.Error("resume upload failed", "error", err)
		return nil, apperror.BadGateway("Upload failed: could not store the resume file", err)
	}

	img, err := u.raster.Rasterize(ctx, req.File)
	if err != nil {
		log.Error("preview rendering failed", "error", err)
		return nil, apperror.New(500, "Conversion failed: could not render the resume preview", err)
	}
	imagePath, err := u.blobs.Upload(ctx, id+".jpg", img, "image/jpeg")
	if err != nil {
		log.Error("preview upload failed", "error", err)
		return nil, apperror.BadGateway("Upload failed: could not store the preview image", err)
	}

	rec := &domain.ResumeRecord{
		ID:             id,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		Feedback:       "",
	}
	if err := u.repo.Save(ctx, rec); err != nil {
		log.Error("placeholder save failed", "error", err)
		return nil, apperror.Internal(fmt.Errorf("save placeholder record: %w", err))
	}
	log.Info("placeholder record persisted", "resume_path", resumePath, "image_path", imagePath)

	reply, err := u.resolver.Resolve(ctx, rec)
	if err != nil {
		// The placeholder record stays; the client can retry analysis
		// by resubmitting.
		log.Error("feedback resolution failed", "error", err)
		return nil, apperror.BadGateway("Analysis failed: the AI provider did not respond", err)
	}

	final, ok := finalizeFeedback(reply)
	if !ok {
		log.Warn("feedback reply was empty")
		return nil, apperror.BadGateway("Analysis failed: the AI returned an empty response", domain.ErrAnalysisFailed)
	}

	rec.Feedback = final
	if err := u.repo.Save(ctx, rec); err != nil {
		log.Error("final save failed", "error", err)
		return nil, apperror.Internal(fmt.Errorf("save finalized record: %w", err))
	}
	if fb, ok := feedback.Decode(rec.Feedback); ok && fb.OverallScore != nil {
		log.Info("submission finalized", "overall_score", *fb.OverallScore)
	} else {
		log.Info("submission finalized", "feedback_shape", "diagnostic")
	}
	return rec, nil
}

// finalizeFeedback turns a resolver reply into the persisted feedback
// value. A string reply is persisted as a normalized feedback object
// only when it parses to one; everything else (unparseable text, but
// also JSON scalars and arrays) stays the verbatim diagnostic string,
// so a terminal write is always either a feedback object or a
// non-empty string. An empty reply reports false and keeps the
// placeholder.
func finalizeFeedback(reply any) (any, bool) {
	switch v := reply.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		if m, ok := feedback.Normalize(feedback.CleanModelResponse(v)).(map[string]any); ok {
			return m, true
		}
		return v, true
	case map[string]any:
		return feedback.NormalizeObject(v), true
	default:
		// Resolvers only produce strings and objects; anything else
		// carries no usable feedback.
		return nil, false
	}
}

func (u *resumeUsecase) Get(ctx context.Context, id string) (*domain.ResumeRecord, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Feedback = renormalize(rec.Feedback)
	return rec, nil
}

func (u *resumeUsecase) List(ctx context.Context) ([]domain.ResumeRecord, error) {
	records, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Feedback = renormalize(records[i].Feedback)
	}
	return records, nil
}

// GetResumeFile returns the stored PDF for a submission. A record whose
// blob has gone missing (bucket cleanup, manual deletion) reports a
// distinct error from a missing record.
func (u *resumeUsecase) GetResumeFile(ctx context.Context, id string) ([]byte, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := u.blobs.Read(ctx, rec.ResumePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrResumeFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read resume blob: %w", err)
	}
	return data, nil
}

func (u *resumeUsecase) GetPreviewImage(ctx context.Context, id string) ([]byte, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := u.blobs.Read(ctx, rec.ImagePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrImageFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read preview blob: %w", err)
	}
	return data, nil
}

// renormalize guards reads against records written by older code or
// external tooling: legacy key spellings and wrapper nesting are fixed
// up again on the way out. Already-normalized values pass unchanged.
func renormalize(v any) any {
	norm := feedback.Normalize(v)
	if m, ok := norm.(map[string]any); ok {
		// A doubly wrapped payload needs a second unwrap pass.
		if _, nested := m["feedback"].(map[string]any); nested {
			norm = feedback.NormalizeObject(m)
		}
	}
	return norm
}
