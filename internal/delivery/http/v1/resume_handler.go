package v1

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go-resume-feedback/internal/delivery/http/response"
	"go-resume-feedback/internal/domain"
	"go-resume-feedback/internal/feedback"
	"go-resume-feedback/pkg/apperror"
	"go-resume-feedback/pkg/logger"
	"go-resume-feedback/pkg/validation"

	"github.com/gin-gonic/gin"
)

// 20 MB, matching the upload cap the frontend enforces.
const maxUploadBytes = 20 << 20

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
}

type submitForm struct {
	CompanyName    string `form:"companyName" binding:"max=200"`
	JobTitle       string `form:"jobTitle" binding:"max=200"`
	JobDescription string `form:"jobDescription" binding:"max=10000"`
}

// NewResumeHandler registers the resume routes. submitLimiter is the
// rate limit applied only to the expensive submission endpoint.
func NewResumeHandler(protected *gin.RouterGroup, submitLimiter gin.HandlerFunc, resumeUC domain.ResumeUsecase) {
	handler := &ResumeHandler{resumeUC: resumeUC}

	protected.POST("/resumes", submitLimiter, handler.Submit)
	protected.GET("/resumes", handler.List)
	protected.GET("/resumes/:id", handler.Get)
	protected.GET("/resumes/:id/file", handler.GetFile)
	protected.GET("/resumes/:id/image", handler.GetImage)
}

// Submit godoc
// @Summary      Submit a resume for AI feedback
// @Description  Uploads a resume PDF with job context, renders a preview image, and runs AI analysis. Returns the finalized record.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume          formData  file    true   "Resume PDF"
// @Param        companyName     formData  string  false  "Company name"
// @Param        jobTitle        formData  string  false  "Job title"
// @Param        jobDescription  formData  string  false  "Job description"
// @Success      200  {object}  response.Response{data=domain.ResumeRecord}
// @Failure      400  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Security     BearerAuth
// @Router       /resumes [post]
func (h *ResumeHandler) Submit(c *gin.Context) {
	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.Error(apperror.BadRequest("A resume file is required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.Error(apperror.BadRequest("Resume file exceeds the 20 MB limit"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.Error(apperror.BadRequest("Only PDF resumes are supported"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Could not read the uploaded file"))
		return
	}

	logger.Log.Info("resume submission received",
		"user_id", c.GetString(string(domain.KeyUserID)),
		"email", c.GetString(string(domain.KeyUserEmail)),
		"file", fileHeader.Filename)

	rec, err := h.resumeUC.Submit(c.Request.Context(), &domain.SubmitRequest{
		CompanyName:    form.CompanyName,
		JobTitle:       form.JobTitle,
		JobDescription: form.JobDescription,
		FileName:       fileHeader.Filename,
		File:           data,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Analysis complete", rec)
}

// Get godoc
// @Summary      Get a resume submission
// @Description  Returns the stored record including normalized feedback. Feedback is null while analysis is pending or failed.
// @Tags         resumes
// @Produce      json
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.Response{data=domain.ResumeRecord}
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /resumes/{id} [get]
func (h *ResumeHandler) Get(c *gin.Context) {
	rec, err := h.resumeUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.Error(apperror.NotFound("No saved data found for this resume"))
			return
		}
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume retrieved", rec)
}

// ResumeSummary is the home-view projection of a submission: enough to
// render a card with the preview and headline score, without shipping
// every record's full feedback payload.
type ResumeSummary struct {
	ID           string `json:"id"`
	CompanyName  string `json:"companyName"`
	JobTitle     string `json:"jobTitle"`
	ImagePath    string `json:"imagePath"`
	OverallScore *int   `json:"overallScore,omitempty"`
}

// List godoc
// @Summary      List resume submissions
// @Description  Returns one summary per submission. overallScore is omitted while analysis is pending or when feedback is diagnostic text.
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]v1.ResumeSummary}
// @Security     BearerAuth
// @Router       /resumes [get]
func (h *ResumeHandler) List(c *gin.Context) {
	records, err := h.resumeUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	summaries := make([]ResumeSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, summarize(rec))
	}
	response.Success(c, http.StatusOK, "Resumes retrieved", summaries)
}

func summarize(rec domain.ResumeRecord) ResumeSummary {
	summary := ResumeSummary{
		ID:          rec.ID,
		CompanyName: rec.CompanyName,
		JobTitle:    rec.JobTitle,
		ImagePath:   rec.ImagePath,
	}
	if fb, ok := feedback.Decode(rec.Feedback); ok {
		summary.OverallScore = fb.OverallScore
	}
	return summary
}

// GetFile godoc
// @Summary      Download the original resume PDF
// @Tags         resumes
// @Produce      application/pdf
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /resumes/{id}/file [get]
func (h *ResumeHandler) GetFile(c *gin.Context) {
	data, err := h.resumeUC.GetResumeFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fileError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetImage godoc
// @Summary      Download the resume preview image
// @Tags         resumes
// @Produce      image/jpeg
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /resumes/{id}/image [get]
func (h *ResumeHandler) GetImage(c *gin.Context) {
	data, err := h.resumeUC.GetPreviewImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fileError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *ResumeHandler) fileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.Error(apperror.NotFound("No saved data found for this resume"))
	case errors.Is(err, domain.ErrResumeFileNotFound):
		c.Error(apperror.NotFound("Resume file not found in storage"))
	case errors.Is(err, domain.ErrImageFileNotFound):
		c.Error(apperror.NotFound("Resume preview image not found in storage"))
	default:
		c.Error(err)
	}
}
