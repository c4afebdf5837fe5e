package services

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crisphq/crisp-interview/internal/extractor"
	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/storage"
	"github.com/crisphq/crisp-interview/internal/utils"
)

// ResumeService stores the uploaded resume and recovers contact
// details from it. Storage is best-effort archival; extraction failure
// is the only hard failure.
type ResumeService interface {
	Process(ctx context.Context, fileName, mimeType string, r io.Reader) (models.Contact, string, error)
}

type resumeService struct {
	extractor extractor.Extractor
	uploader  storage.Uploader // optional
	log       *logrus.Logger
}

func NewResumeService(ex extractor.Extractor, uploader storage.Uploader, log *logrus.Logger) ResumeService {
	return &resumeService{extractor: ex, uploader: uploader, log: log}
}

func (s *resumeService) Process(ctx context.Context, fileName, mimeType string, r io.Reader) (models.Contact, string, error) {
	const op = "ResumeService.Process"

	data, err := io.ReadAll(io.LimitReader(r, 10<<20))
	if err != nil {
		return models.Contact{}, "", utils.E(utils.CodeInternal, op, "failed to read upload", err)
	}
	if len(data) == 0 {
		return models.Contact{}, "", utils.E(utils.CodeInvalidArgument, op, "empty file", nil)
	}

	contact, err := s.extractor.Extract(ctx, mimeType, bytes.NewReader(data))
	if err != nil {
		return models.Contact{}, "", err
	}

	objectKey := ""
	if s.uploader != nil {
		objectKey = "resumes/" + uuid.NewString() + ext(mimeType)
		if _, err := s.uploader.Upload(ctx, objectKey, mimeType, bytes.NewReader(data)); err != nil {
			// archival only; the interview continues without the file
			if s.log != nil {
				s.log.WithError(err).WithField("file_name", fileName).Warn("resume upload failed")
			}
			objectKey = ""
		}
	}

	return contact, objectKey, nil
}

func ext(mimeType string) string {
	if mimeType == extractor.MimeDocx {
		return ".docx"
	}
	return ".pdf"
}
