// Package documents describes uploaded documents before they are sent for
// analysis. Type validation and text extraction belong to the analysis
// service; descriptions here are informational.
package documents

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Content types of the formats the analysis service accepts.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var supported = map[string]string{
	".pdf":  ContentTypePDF,
	".docx": ContentTypeDOCX,
}

// Document describes an uploaded file.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Supported   bool   `json:"supported"`
	PageCount   *int   `json:"page_count,omitempty"`
}

// Describe inspects data and returns its description. PDF page counts are
// extracted with pdfcpu; extraction failures are logged and leave PageCount nil.
func Describe(logger *slog.Logger, filename, header string, data []byte) Document {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := supported[ext]

	contentType := detectContentType(ext, header, data)

	return Document{
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Supported:   ok,
		PageCount:   extractPDFPageCount(logger, data, contentType),
	}
}

// Upload is a file read from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FromRequest reads the multipart "file" field from r, bounded by maxSize.
func FromRequest(r *http.Request, maxSize int64) (*Upload, error) {
	if err := r.ParseMultipartForm(maxSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrInvalidFile
		}
		return nil, ErrFileTooLarge
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, ErrInvalidFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrInvalidFile
	}
	if header.Filename == "" {
		return nil, ErrInvalidFile
	}

	return &Upload{
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func detectContentType(ext, header string, data []byte) string {
	if ct, ok := supported[ext]; ok {
		return ct
	}
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != ContentTypePDF {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
