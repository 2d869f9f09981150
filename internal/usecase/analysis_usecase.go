package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-resume-feedback/internal/domain"
	"go-resume-feedback/internal/feedback"
	"go-resume-feedback/pkg/logger"
	"go-resume-feedback/pkg/pdftext"
)

// Policy defaults; revisit if scoring semantics ever become
// user-configurable.
const (
	defaultCategoryScore = 70
	failureOverallScore  = 65
	resumeTextLimit      = 6000
)

var feedbackCategories = []string{"ATS", "toneAndStyle", "content", "structure", "skills"}

type analysisUsecase struct {
	primary   domain.ChatProvider // nil when no hosted provider is configured
	secondary domain.CompletionProvider
	blobs     domain.BlobStore
}

// NewAnalysisUsecase creates the feedback resolver. primary may be nil;
// resolution then goes straight to the local fallback.
func NewAnalysisUsecase(primary domain.ChatProvider, secondary domain.CompletionProvider, blobs domain.BlobStore) domain.FeedbackResolver {
	return &analysisUsecase{primary: primary, secondary: secondary, blobs: blobs}
}

// Resolve runs the provider chain: one attempt against the hosted
// provider, then one against the local endpoint. The secondary branch
// never fails observably; whatever the local model does, the caller
// receives a feedback-shaped object.
func (u *analysisUsecase) Resolve(ctx context.Context, rec *domain.ResumeRecord) (any, error) {
	log := logger.With("component", "analysis", "resume_id", rec.ID)

	if u.primary != nil {
		reply, err := u.resolvePrimary(ctx, rec)
		if err == nil {
			log.Info("primary provider answered")
			return reply, nil
		}
		// The provider's error taxonomy (rate limits, exhausted
		// credits, transport faults) is opaque; all of it means the
		// same thing here.
		log.Warn("primary provider failed, falling back", "error", err)
	} else {
		log.Info("no primary provider configured, using local fallback")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return u.resolveSecondary(ctx, rec), nil
}

func (u *analysisUsecase) resolvePrimary(ctx context.Context, rec *domain.ResumeRecord) (string, error) {
	pdf, err := u.blobs.Read(ctx, rec.ResumePath)
	if err != nil {
		return "", fmt.Errorf("read resume for analysis: %w", err)
	}

	reply, err := u.primary.AnalyzeDocument(ctx, pdf, buildInstructions(rec))
	if err != nil {
		return "", err
	}

	text := feedback.ExtractText(reply)
	if text == "" {
		return "", errors.New("primary reply carried no extractable text")
	}
	return text, nil
}

func (u *analysisUsecase) resolveSecondary(ctx context.Context, rec *domain.ResumeRecord) map[string]any {
	log := logger.With("component", "analysis", "resume_id", rec.ID)

	// Best effort only: a resume without a text layer still gets
	// analyzed, just without its content in the prompt.
	resumeText := ""
	if pdf, err := u.blobs.Read(ctx, rec.ResumePath); err == nil {
		if text, err := pdftext.Extract(pdf); err == nil {
			resumeText = pdftext.Truncate(text, resumeTextLimit)
		} else {
			log.Warn("resume text extraction failed", "error", err)
		}
	} else {
		log.Warn("resume blob unavailable for fallback prompt", "error", err)
	}

	raw, err := u.secondary.Complete(ctx, buildFallbackPrompt(rec, resumeText))
	if err != nil {
		log.Error("secondary provider failed", "error", err)
		return synthesizeDefaultFeedback()
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(feedback.CleanModelResponse(raw)), &parsed); err != nil {
		log.Warn("secondary reply was not JSON", "error", err)
		return synthesizeDefaultFeedback()
	}
	return mapSecondaryReply(parsed)
}

// mapSecondaryReply forces a parsed local-model reply onto the
// canonical schema: every category gets a score (default 70) and a
// tips sequence; unrecognized keys survive untouched.
func mapSecondaryReply(parsed map[string]any) map[string]any {
	out := feedback.NormalizeObject(parsed)

	if out["overallScore"] == nil {
		out["overallScore"] = defaultCategoryScore
	}
	for _, cat := range feedbackCategories {
		block, _ := out[cat].(map[string]any)
		if block == nil {
			block = map[string]any{}
		}
		if block["score"] == nil {
			block["score"] = defaultCategoryScore
		}
		if _, ok := block["tips"].([]any); !ok {
			block["tips"] = []any{}
		}
		out[cat] = block
	}
	if _, ok := out["tips"].([]any); !ok {
		out["tips"] = []any{}
	}
	return out
}

// synthesizeDefaultFeedback is the terminal fallback when the local
// model produces no parseable JSON at all. It is never empty, so the
// secondary path cannot fail observably.
func synthesizeDefaultFeedback() map[string]any {
	tip := func(typ, text, explanation string) map[string]any {
		return map[string]any{"type": typ, "tip": text, "explanation": explanation}
	}
	block := func(score int, text, explanation string) map[string]any {
		return map[string]any{
			"score": score,
			"tips":  []any{tip("improve", text, explanation)},
		}
	}
	return map[string]any{
		"overallScore": failureOverallScore,
		"ATS": block(60, "Run an ATS check manually",
			"Automated ATS scoring was unavailable for this submission."),
		"toneAndStyle": block(65, "Review tone against the job posting",
			"Tone could not be assessed automatically this time."),
		"content": block(65, "Compare your bullet points to the job requirements",
			"Content relevance could not be scored automatically."),
		"structure": block(70, "Keep sections clearly separated",
			"Structure analysis fell back to a conservative default."),
		"skills": block(70, "Mirror the key skills named in the job description",
			"Skill matching was skipped because no structured analysis was produced."),
		"tips": []any{tip("improve",
			"AI analysis returned non-JSON output; the scores shown are conservative defaults",
			"Resubmit the resume to retry the full analysis.")},
	}
}

// feedbackSchema is embedded verbatim in every prompt so even a
// provider with no structured-output guarantee is steered toward a
// parseable reply.
const feedbackSchema = `{
  "overallScore": <number 0-100>,
  "ATS": {"score": <number 0-100>, "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}]},
  "toneAndStyle": {"score": <number 0-100>, "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}]},
  "content": {"score": <number 0-100>, "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}]},
  "structure": {"score": <number 0-100>, "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}]},
  "skills": {"score": <number 0-100>, "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}], "matched": [<string>], "missing": [<string>]},
  "tips": [{"type": "good" | "improve", "tip": <string>, "explanation": <string>}]
}`

func buildInstructions(rec *domain.ResumeRecord) string {
	return fmt.Sprintf(`You are an expert in ATS (applicant tracking systems) and resume review.
Analyze the attached resume for the position below and score it.
Be thorough and honest; low scores are fine when deserved.

Job title: %s
Company: %s
Job description:
%s

Score these categories: ATS compatibility, tone and style, content, structure, and skills.
Return valid JSON matching exactly this schema, with no commentary and no markdown fences:
%s`, rec.JobTitle, rec.CompanyName, rec.JobDescription, feedbackSchema)
}

func buildFallbackPrompt(rec *domain.ResumeRecord, resumeText string) string {
	prompt := fmt.Sprintf(`Respond with JSON only. No prose, no markdown fences.
Evaluate a resume for the position below and fill in exactly this schema:
%s

Job title: %s
Company: %s
Job description:
%s`, feedbackSchema, rec.JobTitle, rec.CompanyName, rec.JobDescription)

	if resumeText != "" {
		prompt += fmt.Sprintf("\n\nResume text (may be truncated):\n%s", resumeText)
	}
	return prompt
}
