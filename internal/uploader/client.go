// Package uploader sends normalized files to the ingestion endpoint and tracks the
// state of a single interactive upload session.
package uploader

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"busgallery/internal/archive"
	"busgallery/internal/model"
)

const (
	uploadPath   = "/api/uploadBusImages"
	busesPath    = "/api/getBuses"
	apiKeyHeader = "X-API-Key"

	// GenericFailureMessage is shown when the server gave no usable error text.
	GenericFailureMessage = "Upload failed. Please try again."
)

// Batch is everything sent by one upload action.
type Batch struct {
	BusID    string
	BatchKey string
	Files    []archive.File
}

// ProgressFunc receives whole percentages of the request body sent so far.
type ProgressFunc func(percent int)

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Success bool             `json:"success"`
	Images  []model.BusImage `json:"images"`
}

// UploadError is a failed upload. Status is 0 when no response was received.
type UploadError struct {
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upload: %s", e.Message)
	}
	return fmt.Sprintf("upload: status %d: %s", e.Status, e.Message)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Client talks to the busgallery API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends the key on upload requests.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// NewClient builds a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send uploads the whole batch as one multipart request.
func (c *Client) Send(ctx context.Context, b Batch, progress ProgressFunc) (*UploadResponse, error) {
	body, contentType, err := encodeBatch(b)
	if err != nil {
		return nil, &UploadError{Message: GenericFailureMessage, Err: err}
	}

	var r io.Reader = bytes.NewReader(body)
	if progress != nil {
		r = newProgressReader(r, int64(len(body)), progress)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, r)
	if err != nil {
		return nil, &UploadError{Message: GenericFailureMessage, Err: err}
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UploadError{Message: GenericFailureMessage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UploadError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UploadError{Status: resp.StatusCode, Message: GenericFailureMessage, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// ListBuses fetches the bus picker list.
func (c *Client) ListBuses(ctx context.Context) ([]model.BusSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+busesPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list buses: status %d: %s", resp.StatusCode, errorMessage(resp.Body))
	}
	var out struct {
		Buses []model.BusSummary `json:"buses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode buses: %w", err)
	}
	return out.Buses, nil
}

// errorMessage returns the server's error text verbatim, or the generic message.
func errorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return GenericFailureMessage
	}
	return body.Error
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func encodeBatch(b Batch) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("busId", b.BusID); err != nil {
		return nil, "", err
	}
	if b.BatchKey != "" {
		if err := w.WriteField("batchKey", b.BatchKey); err != nil {
			return nil, "", err
		}
	}
	for _, f := range b.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		ct := f.Type
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
