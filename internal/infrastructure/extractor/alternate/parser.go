// Package alternate implements the secondary parse strategy. It reads the same
// formats as the direct parser through independent code paths so that a
// document one parser chokes on may still be readable by the other.
package alternate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

const operation = "alternate parse"

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
	return domain.MethodAlternateParse
}

func (p *Parser) Attempt(ctx context.Context, doc domain.RawDocument) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("parser_panic", "method", string(domain.MethodAlternateParse), "filename", doc.Filename, "panic", fmt.Sprint(r))
			text, err = "", domain.WrapError(domain.ErrParseFailure, operation, fmt.Errorf("parser panic: %v", r))
		}
	}()

	format := doc.Format()
	switch format {
	case domain.FormatPDF:
		text, err = parsePDF(ctx, doc.Data)
	case domain.FormatDOCX:
		text, err = parseDOCX(doc.Data)
	case domain.FormatText:
		text, err = decodeText(doc.Data)
	default:
		return "", domain.WrapError(domain.ErrParseFailure, operation, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format))
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrParseFailure, operation, err)
	}
	return text, nil
}
