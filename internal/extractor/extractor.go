package extractor

import (
	"context"
	"io"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

const (
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor recovers best-effort contact details from an uploaded
// resume. Any Contact field may be empty when not found.
type Extractor interface {
	Extract(ctx context.Context, mimeType string, r io.Reader) (models.Contact, error)
}

type service struct {
	log *logrus.Logger
}

func New(log *logrus.Logger) Extractor {
	return &service{log: log}
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+`)
	phoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	nameRe  = regexp.MustCompile(`[A-Z][a-z]+\s[A-Z][a-z]+`)
)

func (s *service) Extract(ctx context.Context, mimeType string, r io.Reader) (models.Contact, error) {
	const op = "Extractor.Extract"

	var (
		text string
		err  error
	)
	switch mimeType {
	case MimePDF:
		text, err = pdfText(ctx, r)
	case MimeDocx:
		text, err = docxText(r)
	default:
		return models.Contact{}, utils.E(utils.CodeUnsupportedMedia, op, "Unsupported file type. Please upload a PDF or DOCX resume.", nil)
	}
	if err != nil {
		return models.Contact{}, utils.E(utils.CodeUnsupportedMedia, op, "Could not read the uploaded document.", err)
	}

	contact := contactFromText(text)
	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"mime_type":   mimeType,
			"found_name":  contact.Name != "",
			"found_email": contact.Email != "",
			"found_phone": contact.Phone != "",
		}).Debug("resume extracted")
	}
	return contact, nil
}

// contactFromText applies the pattern-matching heuristics: first email
// address, first US-style phone number, first capitalized
// first-and-last-name pair.
func contactFromText(text string) models.Contact {
	return models.Contact{
		Name:  nameRe.FindString(text),
		Email: emailRe.FindString(text),
		Phone: phoneRe.FindString(text),
	}
}
