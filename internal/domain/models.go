package domain

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// ExtractionMode is one of the closed set of extraction workflows.
type ExtractionMode string

const (
	ModeHandwriting ExtractionMode = "handwriting"
	ModePDF         ExtractionMode = "pdf"
	ModeAudio       ExtractionMode = "audio"
	ModeVideo       ExtractionMode = "video"
)

// Preprocessor selects how an accepted document is turned into payloads.
type Preprocessor string

const (
	PreprocessNone  Preprocessor = "none"
	PreprocessImage Preprocessor = "image"
	PreprocessPDF   Preprocessor = "pdf"
)

// ModeConfig is the static, immutable configuration of an extraction mode.
type ModeConfig struct {
	Mode              ExtractionMode `json:"mode"`
	Title             string         `json:"title"`
	Icon              string         `json:"icon"`
	Accept            string         `json:"accept"`
	Supported         bool           `json:"supported"`
	UnsupportedReason string         `json:"unsupportedReason,omitempty"`
	Preprocessor      Preprocessor   `json:"-"`
}

// UploadedDocument is a user-supplied file. It is replaced wholesale on a new
// selection and never mutated.
type UploadedDocument struct {
	Name     string
	MimeType string
	Size     int64
	open     func() (io.ReadCloser, error)
}

// NewDocument creates a document whose content is read lazily through open.
func NewDocument(name, mimeType string, size int64, open func() (io.ReadCloser, error)) UploadedDocument {
	return UploadedDocument{Name: name, MimeType: mimeType, Size: size, open: open}
}

// DocumentFromBytes creates a document backed by an in-memory buffer.
func DocumentFromBytes(name, mimeType string, data []byte) UploadedDocument {
	return NewDocument(name, mimeType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// ReadAll reads the complete document content.
func (d UploadedDocument) ReadAll() ([]byte, error) {
	if d.open == nil {
		return nil, fmt.Errorf("document %q has no content source", d.Name)
	}
	rc, err := d.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// DocumentInfo is the displayable part of an UploadedDocument.
type DocumentInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Info returns the document's display metadata.
func (d UploadedDocument) Info() DocumentInfo {
	return DocumentInfo{Name: d.Name, MimeType: d.MimeType, Size: d.Size}
}

// Payload is an encoded image fragment suitable for a generation request.
// Data is base64 without any data-URL envelope.
type Payload struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// RasterPage is one rasterized PDF page.
type RasterPage struct {
	Index   int     `json:"index"` // 1-based
	Payload Payload `json:"payload"`
}

// ExtractionRequest is built fresh for every collaborator call.
type ExtractionRequest struct {
	Prompt            string
	SystemInstruction string
	Images            []Payload
	Search            bool
}

// GroundingSource is a citation returned with a search-augmented response.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GroundedResponse is the raw answer of a search-grounded generation.
type GroundedResponse struct {
	Text    string
	Sources []GroundingSource
}

// ExtractionResult is a rendered response.
type ExtractionResult struct {
	HTML    string            `json:"html"`
	Raw     string            `json:"raw"`
	Sources []GroundingSource `json:"sources"`
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart          EventType = "start"
	EventEngineLoading  EventType = "engine_loading"
	EventPageProcessing EventType = "page_processing"
	EventPreview        EventType = "preview"
	EventPageComplete   EventType = "page_complete"
	EventError          EventType = "error"
	EventComplete       EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	PageNumber int         `json:"page_number,omitempty"`
	TotalPages int         `json:"total_pages,omitempty"`
	Payload    interface{} `json:"payload,omitempty"` // status message or preview data URL
	Timestamp  time.Time   `json:"timestamp"`
}
