package domain

import (
	"context"
	"errors"
)

// Domain errors. Handlers map these onto stage-specific user messages,
// so a missing record is distinguishable from a missing file.
var (
	ErrRecordNotFound     = errors.New("no saved data found for this resume")
	ErrResumeFileNotFound = errors.New("resume file not found in storage")
	ErrImageFileNotFound  = errors.New("resume preview image not found in storage")
	ErrAnalysisFailed     = errors.New("analysis produced no usable feedback")
)

// ResumeRecord is the persisted unit of work, one per submission.
// Feedback holds either a normalized feedback object (map[string]any),
// a raw diagnostic string when AI output could not be parsed as JSON,
// or the empty string between the placeholder write and finalization.
type ResumeRecord struct {
	ID             string `json:"id"`
	CompanyName    string `json:"companyName"`
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
	ResumePath     string `json:"resumePath"`
	ImagePath      string `json:"imagePath"`
	Feedback       any    `json:"feedback"`
}

// Tip is a single suggestion entry. Type is conventionally "good" or
// "improve" but treated as an opaque tag.
type Tip struct {
	Type        string `json:"type,omitempty" mapstructure:"type"`
	Tip         string `json:"tip,omitempty" mapstructure:"tip"`
	Explanation string `json:"explanation,omitempty" mapstructure:"explanation"`
}

// ScoreBlock is one scored feedback category. Matched/Missing are only
// populated by categories that compare keyword lists (e.g. skills).
type ScoreBlock struct {
	Score   *int     `json:"score,omitempty" mapstructure:"score"`
	Tips    []Tip    `json:"tips,omitempty" mapstructure:"tips"`
	Matched []string `json:"matched,omitempty" mapstructure:"matched"`
	Missing []string `json:"missing,omitempty" mapstructure:"missing"`
}

// FeedbackRecord is the canonical, typed view of a feedback payload.
// Every field is optional; consumers must not assume presence. The
// persisted form stays a map so unrecognized producer keys survive
// round-trips; this struct is a read-side projection of that map.
type FeedbackRecord struct {
	OverallScore *int        `json:"overallScore,omitempty" mapstructure:"overallScore"`
	ATS          *ScoreBlock `json:"ATS,omitempty" mapstructure:"ATS"`
	ToneAndStyle *ScoreBlock `json:"toneAndStyle,omitempty" mapstructure:"toneAndStyle"`
	Content      *ScoreBlock `json:"content,omitempty" mapstructure:"content"`
	Structure    *ScoreBlock `json:"structure,omitempty" mapstructure:"structure"`
	Skills       *ScoreBlock `json:"skills,omitempty" mapstructure:"skills"`
	Tips         []Tip       `json:"tips,omitempty" mapstructure:"tips"`
}

// SubmitRequest carries one resume submission through the upload flow.
type SubmitRequest struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
	FileName       string
	File           []byte
}

type ResumeRepository interface {
	Save(ctx context.Context, rec *ResumeRecord) error
	Get(ctx context.Context, id string) (*ResumeRecord, error)
	List(ctx context.Context) ([]ResumeRecord, error)
}

type ResumeUsecase interface {
	Submit(ctx context.Context, req *SubmitRequest) (*ResumeRecord, error)
	Get(ctx context.Context, id string) (*ResumeRecord, error)
	List(ctx context.Context) ([]ResumeRecord, error)
	GetResumeFile(ctx context.Context, id string) ([]byte, error)
	GetPreviewImage(ctx context.Context, id string) ([]byte, error)
}
