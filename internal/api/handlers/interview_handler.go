package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crisphq/crisp-interview/internal/extractor"
	"github.com/crisphq/crisp-interview/internal/interview"
	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

type InterviewHandler struct {
	engine *interview.Engine
}

func NewInterviewHandler(engine *interview.Engine) *InterviewHandler {
	return &InterviewHandler{engine: engine}
}

type SessionResponse struct {
	models.SessionState
	WelcomeBack bool `json:"welcomeBack"`
}

func (h *InterviewHandler) snapshot() SessionResponse {
	return SessionResponse{
		SessionState: h.engine.Snapshot(),
		WelcomeBack:  h.engine.NeedsWelcomeBack(),
	}
}

func (h *InterviewHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot())
}

// UploadResume accepts the resume file and kicks off extraction.
func (h *InterviewHandler) UploadResume(c *gin.Context) {
	const op = "InterviewHandler.UploadResume"

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > 10<<20 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil))
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".pdf":
			mimeType = extractor.MimePDF
		case ".docx":
			mimeType = extractor.MimeDocx
		}
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	if err := h.engine.UploadResume(c.Request.Context(), fh.Filename, mimeType, file); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot())
}

type ConfirmRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

func (h *InterviewHandler) Confirm(c *gin.Context) {
	const op = "InterviewHandler.Confirm"

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "name and email are required", err))
		return
	}

	err := h.engine.Confirm(c.Request.Context(), models.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot())
}

type DraftRequest struct {
	Text string `json:"text"`
}

func (h *InterviewHandler) SaveDraft(c *gin.Context) {
	const op = "InterviewHandler.SaveDraft"

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}
	if err := h.engine.SaveDraft(req.Text); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type AnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	const op = "InterviewHandler.SubmitAnswer"

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "answer text is required", err))
		return
	}
	if err := h.engine.SubmitAnswer(c.Request.Context(), req.Text); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot())
}

func (h *InterviewHandler) Continue(c *gin.Context) {
	h.engine.ContinueSession()
	c.JSON(http.StatusOK, h.snapshot())
}

func (h *InterviewHandler) End(c *gin.Context) {
	if err := h.engine.EndSession(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot())
}

func (h *InterviewHandler) Reset(c *gin.Context) {
	if err := h.engine.Reset(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshot())
}
