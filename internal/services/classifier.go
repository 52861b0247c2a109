package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ImagePathPrefix is prepended to a reference to form the analyze file_path
const ImagePathPrefix = "images/"

// UploadRequest is a selected image and the display name derived from its file name
type UploadRequest struct {
	Name        string
	ContentType string
	Data        io.Reader
	Size        int64
}

// UploadResult is the /post_image response. An empty ErrorCodes means success.
type UploadResult struct {
	ErrorCodes     []int    `json:"error_codes"`
	Threshold      *float64 `json:"threshold,omitempty"`
	Classification *string  `json:"classification,omitempty"`
}

// Accepted reports whether the service accepted the upload
func (r *UploadResult) Accepted() bool {
	return len(r.ErrorCodes) == 0
}

// AnalyzeRequest is the /analyze request body
type AnalyzeRequest struct {
	FilePath string `json:"file_path"`
}

// AnalysisResult is the /analyze response. Data is a base64 encoded PNG.
type AnalysisResult struct {
	Data           string `json:"data"`
	ContainsMoeru  bool   `json:"contains_moeru"`
	ContainsMoenai bool   `json:"contains_moenai"`
}

// Classifier is the remote classification service
type Classifier interface {
	PostImage(ctx context.Context, req UploadRequest) (*UploadResult, error)
	Analyze(ctx context.Context, reference string) (*AnalysisResult, error)
}

// TransportError is a network, HTTP status or decoding failure talking to the classifier
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that outbound classifier calls forward
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the ID set by WithRequestID, or ""
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HTTPClassifier talks to the classifier over HTTP
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a client for the service at baseURL.
// A nil client gets a default with a 60s timeout.
func NewHTTPClassifier(baseURL string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// BaseURL returns the service root without a trailing slash
func (c *HTTPClassifier) BaseURL() string {
	return c.baseURL
}

// PostImage sends the image as the multipart field "file"
func (c *HTTPClassifier) PostImage(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	const op = "post_image"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Name))
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set(echo.HeaderContentType, contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if _, err := io.Copy(part, req.Data); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var result UploadResult
	if err := c.do(ctx, op, "/post_image", mw.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Analyze asks the service to classify images/<reference>
func (c *HTTPClassifier) Analyze(ctx context.Context, reference string) (*AnalysisResult, error) {
	const op = "analyze"

	payload, err := json.Marshal(AnalyzeRequest{FilePath: ImagePathPrefix + reference})
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var result AnalysisResult
	if err := c.do(ctx, op, "/analyze", echo.MIMEApplicationJSON, bytes.NewReader(payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClassifier) do(ctx context.Context, op, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set(echo.HeaderContentType, contentType)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set(echo.HeaderXRequestID, id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(snippet)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
