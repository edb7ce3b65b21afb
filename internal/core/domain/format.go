package domain

import (
	"bytes"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatDOC     Format = "doc"
	FormatXLSX    Format = "xlsx"
	FormatHTML    Format = "html"
	FormatText    Format = "txt"
	FormatImage   Format = "image"
	FormatUnknown Format = "unknown"
)

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".doc":      FormatDOC,
	".xlsx":     FormatXLSX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatText,
	".markdown": FormatText,
	".png":      FormatImage,
	".jpg":      FormatImage,
	".jpeg":     FormatImage,
	".tif":      FormatImage,
	".tiff":     FormatImage,
	".bmp":      FormatImage,
	".webp":     FormatImage,
}

// DetectFormat picks the declared format from the file extension; head is only
// consulted when the extension says nothing.
func DetectFormat(filename string, head []byte) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if format, ok := extensionFormats[ext]; ok {
		return format
	}
	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return FormatPDF
	}
	return FormatUnknown
}

// Rasterizable reports whether pages of this format can be rendered to images.
func (f Format) Rasterizable() bool {
	return f == FormatPDF || f == FormatImage
}
