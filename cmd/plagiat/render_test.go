package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/documents"
	"github.com/JaimeStill/plagiat/internal/reformulation"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "[" + strings.Repeat(".", barWidth) + "] 0%"},
		{50, "[" + strings.Repeat("#", 15) + strings.Repeat(".", 15) + "] 50%"},
		{94.6, "[" + strings.Repeat("#", 28) + strings.Repeat(".", 2) + "] 95%"},
		{100, "[" + strings.Repeat("#", barWidth) + "] 100%"},
		{140, "[" + strings.Repeat("#", barWidth) + "] 100%"},
		{-5, "[" + strings.Repeat(".", barWidth) + "] 0%"},
	}

	for _, tt := range tests {
		if got := progressBar(tt.value); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRenderResultTruncatesURLs(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, true)

	long := "https://example.com/" + strings.Repeat("a", 80)
	r.result(&analysis.Result{
		Score:   25,
		Sources: []analysis.Source{{URL: long, Score: 25}},
	})

	got := out.String()
	if strings.Contains(got, long) {
		t.Error("long url should be truncated")
	}
	if !strings.Contains(got, long[:displayURLLength]+"...") {
		t.Errorf("truncated url missing:\n%s", got)
	}
	if !strings.Contains(got, "LOW") {
		t.Errorf("tier missing:\n%s", got)
	}
}

func TestRenderDocument(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, true)

	pages := 3
	r.document(documents.Document{
		Filename:    "thesis.pdf",
		ContentType: documents.ContentTypePDF,
		SizeBytes:   2048,
		Supported:   true,
		PageCount:   &pages,
	})
	r.document(documents.Document{Filename: "notes.txt", ContentType: "text/plain", SizeBytes: 10})

	got := out.String()
	if !strings.Contains(got, "thesis.pdf (application/pdf, 2.0 KB, 3 pages)") {
		t.Errorf("pdf description:\n%s", got)
	}
	if strings.Count(got, "warning:") != 1 {
		t.Errorf("only the unsupported file should warn:\n%s", got)
	}
}

func TestRenderReformulation(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, true)

	r.reformulation(reformulation.State{
		Original: "line one\nline two",
		Text:     "rewritten",
		Method:   analysis.MethodBasic,
	})

	got := out.String()
	for _, want := range []string{"Reformulation (Basic)", "  line one\n  line two", "  rewritten"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
