package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/damacus/trash-lens/internal/services"
)

// ErrNoFile is returned when the upload has no usable file name
var ErrNoFile = errors.New("no file selected")

// UploadRejectedError is returned when the classifier answered with error codes
type UploadRejectedError struct {
	Name  string
	Codes []int
}

func (e *UploadRejectedError) Error() string {
	return fmt.Sprintf("upload %q rejected with codes %v", e.Name, e.Codes)
}

// DisplayName derives the reference name from an uploaded file name
func DisplayName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Uploader sends a selected photo to the classifier and moves on to the result page
type Uploader struct {
	classifier services.Classifier
	archive    services.Archive
}

// NewUploader creates an Uploader. archive may be nil.
func NewUploader(classifier services.Classifier, archive services.Archive) *Uploader {
	return &Uploader{classifier: classifier, archive: archive}
}

// Submit uploads req. Only an accepted upload touches recent and navigates,
// exactly once, to the result page for req.Name.
func (u *Uploader) Submit(ctx context.Context, sessionID string, req services.UploadRequest, recent *RecentList, nav Navigator) (*services.UploadResult, error) {
	if req.Name == "" || req.Data == nil {
		return nil, ErrNoFile
	}

	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", req.Name, err)
	}
	size := int64(len(data))

	result, err := u.classifier.PostImage(ctx, services.UploadRequest{
		Name:        req.Name,
		ContentType: req.ContentType,
		Data:        bytes.NewReader(data),
		Size:        size,
	})
	if err != nil {
		log.Printf("UPLOAD: transport failure: name=%q err=%v", req.Name, err)
		return nil, err
	}
	if !result.Accepted() {
		log.Printf("UPLOAD: rejected: name=%q error_codes=%v", req.Name, result.ErrorCodes)
		return result, &UploadRejectedError{Name: req.Name, Codes: result.ErrorCodes}
	}

	recent.Push(req.Name)

	if u.archive != nil {
		if err := u.archive.Store(ctx, sessionID, req.Name, bytes.NewReader(data), size, req.ContentType); err != nil {
			log.Printf("UPLOAD: archive failed: name=%q err=%v", req.Name, err)
		}
	}

	if err := nav.Navigate(ResultURL(req.Name)); err != nil {
		return result, fmt.Errorf("navigate to result: %w", err)
	}
	return result, nil
}
