// Package checker is the HTTP client for the remote content-analysis
// service. It submits text and documents for similarity scoring and
// requests rewrites of submitted text.
package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/JaimeStill/plagiat/internal/analysis"
)

// Client defines the analysis service operations.
type Client interface {
	// CheckText scores text for similarity against external sources.
	CheckText(ctx context.Context, text string) (*analysis.Result, error)
	// CheckFile uploads a PDF or DOCX document for scoring. Type validation
	// and text extraction happen on the service.
	CheckFile(ctx context.Context, filename string, data []byte) (*analysis.Result, error)
	// Reformulate requests a rewrite of text. A response that omits the
	// method yields a Rewrite with MethodUnset.
	Reformulate(ctx context.Context, text string, useAI bool) (*analysis.Rewrite, error)
	// Health reports whether the service is reachable.
	Health(ctx context.Context) error
}

const (
	pathCheck       = "/check"
	pathUpload      = "/upload"
	pathReformulate = "/reformulate"
	pathHealth      = "/health"

	maxErrorBody = 4096
)

type checkRequest struct {
	Text string `json:"text"`
}

type reformulateRequest struct {
	Text  string `json:"text"`
	UseAI bool   `json:"use_ai"`
}

type sourceResponse struct {
	URL   string   `json:"url"`
	Score *float64 `json:"score"`
}

type checkResponse struct {
	PlagiarismScore *float64         `json:"plagiarism_score"`
	Sources         []sourceResponse `json:"sources"`
}

type reformulateResponse struct {
	Original     string  `json:"original"`
	Reformulated *string `json:"reformulated"`
	Method       string  `json:"method"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}

type httpClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the service at cfg.BaseURL. The config is
// expected to have been finalized.
func New(cfg *Config, logger *slog.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "checker"),
	}
}

func (c *httpClient) CheckText(ctx context.Context, text string) (*analysis.Result, error) {
	body, err := json.Marshal(checkRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode check request: %w", err)
	}

	var resp checkResponse
	if err := c.post(ctx, pathCheck, "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "text checked", "length", len(text))
	return resp.result()
}

func (c *httpClient) CheckFile(ctx context.Context, filename string, data []byte) (*analysis.Result, error) {
	body, contentType, err := encodeFile(filename, data)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	var resp checkResponse
	if err := c.post(ctx, pathUpload, contentType, body, &resp); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "file checked", "filename", filename, "size", len(data))
	return resp.result()
}

func (c *httpClient) Reformulate(ctx context.Context, text string, useAI bool) (*analysis.Rewrite, error) {
	body, err := json.Marshal(reformulateRequest{Text: text, UseAI: useAI})
	if err != nil {
		return nil, fmt.Errorf("encode reformulate request: %w", err)
	}

	var resp reformulateResponse
	if err := c.post(ctx, pathReformulate, "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	return resp.rewrite()
}

func (c *httpClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, pathHealth, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %w", ErrTransport, pathHealth, &StatusError{Code: res.StatusCode})
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %w", ErrTransport, path, readStatusError(res))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", ErrShape, path, err)
	}
	return nil
}

func readStatusError(res *http.Response) *StatusError {
	se := &StatusError{Code: res.StatusCode}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}

	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Detail != nil {
		if s, ok := er.Detail.(string); ok {
			se.Detail = s
		} else {
			detail, _ := json.Marshal(er.Detail)
			se.Detail = string(detail)
		}
		return se
	}

	se.Detail = strings.TrimSpace(string(data))
	return se
}

func encodeFile(filename string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func (r *checkResponse) result() (*analysis.Result, error) {
	if r.PlagiarismScore == nil {
		return nil, fmt.Errorf("%w: missing plagiarism_score", ErrShape)
	}

	sources := make([]analysis.Source, 0, len(r.Sources))
	for i, s := range r.Sources {
		if s.Score == nil {
			return nil, fmt.Errorf("%w: source %d missing score", ErrShape, i)
		}
		sources = append(sources, analysis.Source{URL: s.URL, Score: *s.Score})
	}

	return &analysis.Result{
		Score:   *r.PlagiarismScore,
		Sources: sources,
	}, nil
}

func (r *reformulateResponse) rewrite() (*analysis.Rewrite, error) {
	if r.Reformulated == nil {
		return nil, fmt.Errorf("%w: missing reformulated", ErrShape)
	}

	return &analysis.Rewrite{
		Original: r.Original,
		Text:     *r.Reformulated,
		Method:   parseMethod(r.Method),
	}, nil
}

func parseMethod(s string) analysis.Method {
	switch {
	case strings.EqualFold(s, string(analysis.MethodAI)):
		return analysis.MethodAI
	case strings.EqualFold(s, string(analysis.MethodBasic)):
		return analysis.MethodBasic
	default:
		return analysis.MethodUnset
	}
}
