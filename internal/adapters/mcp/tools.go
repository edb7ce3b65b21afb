// Package mcpadapter exposes extraction and segmentation as MCP tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc domain.RawDocument) (*domain.DocumentAnalysis, error)
}

type Tools struct {
	extractor ports.TextExtractionService
	segmenter ports.QuestionSegmenter
	analyzer  DocumentAnalyzer
	maxBytes  int64
}

func NewTools(
	extractor ports.TextExtractionService,
	segmenter ports.QuestionSegmenter,
	analyzer DocumentAnalyzer,
	maxBytes int64,
) *Tools {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &Tools{
		extractor: extractor,
		segmenter: segmenter,
		analyzer:  analyzer,
		maxBytes:  maxBytes,
	}
}

func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("extract_document",
		mcp.WithDescription("Extract readable text from a document file (pdf, docx, xlsx, html, txt or image). Returns the winning method, readability score and text."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document on the server filesystem")),
	), t.handleExtract)

	s.AddTool(mcp.NewTool("segment_questions",
		mcp.WithDescription("Split extracted text into question and answer pairs tagged with topic, importance, difficulty and confidence."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Cleaned document text")),
		mcp.WithString("filename", mcp.Description("Original filename, used as a topic hint")),
	), t.handleSegment)

	if t.analyzer != nil {
		s.AddTool(mcp.NewTool("analyze_document",
			mcp.WithDescription("Extract text from a document file and derive exam questions from it in one call."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document on the server filesystem")),
		), t.handleAnalyze)
	}
}

func (t *Tools) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.readDocument(request)
	if err != nil {
		return toolError(err), nil
	}
	result, err := t.extractor.Extract(ctx, doc)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(result)
}

func (t *Tools) handleSegment(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return toolError(domain.WrapError(domain.ErrInvalidInput, "segment questions", err)), nil
	}
	questions := t.segmenter.Segment(text, request.GetString("filename", ""))
	return jsonResult(questions)
}

func (t *Tools) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.readDocument(request)
	if err != nil {
		return toolError(err), nil
	}
	analysis, err := t.analyzer.Analyze(ctx, doc)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(analysis)
}

func (t *Tools) readDocument(request mcp.CallToolRequest) (domain.RawDocument, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return domain.RawDocument{}, domain.WrapError(domain.ErrInvalidInput, "read document", err)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.RawDocument{}, domain.WrapError(domain.ErrDocumentNotFound, "read document", err)
		}
		return domain.RawDocument{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, t.maxBytes+1))
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > t.maxBytes {
		return domain.RawDocument{}, domain.WrapError(domain.ErrInvalidInput, "read document", fmt.Errorf("document exceeds %d bytes", t.maxBytes))
	}
	return domain.RawDocument{Filename: filepath.Base(path), Data: data}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
