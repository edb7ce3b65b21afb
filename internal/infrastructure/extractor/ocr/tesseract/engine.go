// Package tesseract adapts the local Tesseract engine to the OCR session port.
package tesseract

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

type Engine struct {
	languages []string
}

func NewEngine(languages []string) *Engine {
	langs := make([]string, 0, len(languages))
	for _, lang := range languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Engine{languages: langs}
}

// Open starts a Tesseract client. The caller owns the session and must Close it.
func (e *Engine) Open() (ports.OCRSession, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(e.languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set tesseract languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("set tesseract page segmentation: %w", err)
	}
	_ = client.SetVariable("preserve_interword_spaces", "1")
	return &session{client: client}, nil
}

type session struct {
	client *gosseract.Client
}

func (s *session) Recognize(png []byte) (string, error) {
	if err := s.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract text: %w", err)
	}
	return text, nil
}

func (s *session) Close() error {
	return s.client.Close()
}
