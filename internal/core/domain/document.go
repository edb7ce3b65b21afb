package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID                 string           `json:"id"`
	Filename           string           `json:"filename"`
	MimeType           string           `json:"mime_type"`
	Format             Format           `json:"format"`
	StoragePath        string           `json:"storage_path"`
	Status             DocumentStatus   `json:"status"`
	Error              string           `json:"error,omitempty"`
	ExtractionMethod   ExtractionMethod `json:"extraction_method,omitempty"`
	ExtractionDegraded bool             `json:"extraction_degraded,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// RawDocument is an uploaded byte buffer plus the name it arrived with.
// Content is never inspected through the filename beyond picking a declared format.
type RawDocument struct {
	Filename string
	Data     []byte
}

func (d RawDocument) Format() Format {
	head := d.Data
	if len(head) > 8 {
		head = head[:8]
	}
	return DetectFormat(d.Filename, head)
}
