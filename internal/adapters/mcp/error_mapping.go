package mcpadapter

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

func mapErrorToCode(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrAllMethodsExhausted):
		return "unreadable_document"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporarily_unavailable"
	default:
		return "internal"
	}
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(mapErrorToCode(err) + ": " + err.Error())
}
