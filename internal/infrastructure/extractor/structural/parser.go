// Package structural implements the direct-parse strategy: each format is read
// through its own document model (PDF text layer, OOXML parts, HTML DOM).
package structural

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

const operation = "direct parse"

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) Method() domain.ExtractionMethod {
	return domain.MethodDirectParse
}

func (p *Parser) Attempt(ctx context.Context, doc domain.RawDocument) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		// Third-party parsers panic on some malformed inputs.
		if r := recover(); r != nil {
			p.logger.Warn("parser_panic", "method", string(domain.MethodDirectParse), "filename", doc.Filename, "panic", fmt.Sprint(r))
			text, err = "", domain.WrapError(domain.ErrParseFailure, operation, fmt.Errorf("parser panic: %v", r))
		}
	}()

	format := doc.Format()
	switch format {
	case domain.FormatPDF:
		text, err = parsePDF(ctx, doc.Data)
	case domain.FormatDOCX:
		text, err = parseDOCX(doc.Data)
	case domain.FormatXLSX:
		text, err = parseXLSX(doc.Data)
	case domain.FormatHTML:
		text, err = parseHTML(doc.Data)
	case domain.FormatText:
		text, err = parsePlainText(doc.Data)
	default:
		return "", domain.WrapError(domain.ErrParseFailure, operation, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format))
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrParseFailure, operation, err)
	}
	return text, nil
}
