package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisphq/crisp-interview/internal/extractor"
	"github.com/crisphq/crisp-interview/internal/models"
	"github.com/crisphq/crisp-interview/internal/utils"
)

type fakeExtractor struct {
	contact models.Contact
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ io.Reader) (models.Contact, error) {
	return f.contact, f.err
}

type fakeUploader struct {
	err  error
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, objectKey, _ string, _ io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, objectKey)
	return objectKey, nil
}

func TestResumeProcess(t *testing.T) {
	up := &fakeUploader{}
	svc := NewResumeService(&fakeExtractor{contact: models.Contact{Name: "Jane Doe"}}, up, nil)

	contact, key, err := svc.Process(context.Background(), "resume.pdf", extractor.MimePDF, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", contact.Name)
	require.Len(t, up.keys, 1)
	assert.Equal(t, up.keys[0], key)
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}

func TestResumeProcessWithoutUploader(t *testing.T) {
	svc := NewResumeService(&fakeExtractor{contact: models.Contact{Email: "jane@example.com"}}, nil, nil)

	contact, key, err := svc.Process(context.Background(), "resume.docx", extractor.MimeDocx, strings.NewReader("PK"))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", contact.Email)
	assert.Empty(t, key)
}

func TestResumeProcessUploadFailureIsNonFatal(t *testing.T) {
	svc := NewResumeService(&fakeExtractor{contact: models.Contact{Name: "Jane Doe"}}, &fakeUploader{err: errors.New("bucket gone")}, nil)

	contact, key, err := svc.Process(context.Background(), "resume.pdf", extractor.MimePDF, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err, "archival is best effort")
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Empty(t, key)
}

func TestResumeProcessExtractionFailureIsFatal(t *testing.T) {
	up := &fakeUploader{}
	svc := NewResumeService(&fakeExtractor{err: utils.E(utils.CodeUnsupportedMedia, "Extractor.Extract", "Unsupported file type.", nil)}, up, nil)

	_, _, err := svc.Process(context.Background(), "resume.txt", "text/plain", strings.NewReader("hello"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnsupportedMedia))
	assert.Empty(t, up.keys)
}

func TestResumeProcessRejectsEmptyFile(t *testing.T) {
	svc := NewResumeService(&fakeExtractor{}, nil, nil)
	_, _, err := svc.Process(context.Background(), "resume.pdf", extractor.MimePDF, strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
