package domain

import (
	"path"
	"strings"
	"time"
)

// FileTypePDF is the only file type the text extractor understands
const FileTypePDF = "pdf"

// Document represents an uploaded file owned by a single user
type Document struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	FileType         string    `json:"file_type"` // Free text tag, e.g. "pdf", "docx"
	OwnerID          string    `json:"owner_id"`
	BlobKey          string    `json:"file"`                   // Blob reference of the original upload
	TextContent      *string   `json:"text_content,omitempty"` // Page-delimited, nil until extracted
	IsOCRProcessed   bool      `json:"is_ocr_processed"`
	CurrentVersionID *string   `json:"current_version_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsPDF reports whether the declared file type is PDF (case-insensitive)
func (d *Document) IsPDF() bool {
	return strings.EqualFold(strings.TrimSpace(d.FileType), FileTypePDF)
}

// HasText reports whether the document carries searchable text
func (d *Document) HasText() bool {
	return d.TextContent != nil && *d.TextContent != ""
}

// Text returns the stored text content or an empty string
func (d *Document) Text() string {
	if d.TextContent == nil {
		return ""
	}
	return *d.TextContent
}

// DocumentDetail is a document together with its owner, versions and annotations
type DocumentDetail struct {
	Document    *Document
	Owner       *UserSummary
	Versions    []*Version
	Annotations []*Annotation
}

// DocumentFilter narrows a document listing
type DocumentFilter struct {
	Search string // Matched against name and text content
}

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no file
func (u *Upload) Empty() bool {
	return u == nil || (u.Filename == "" && len(u.Data) == 0)
}

// Extension returns the lower-cased filename extension without the dot
func (u *Upload) Extension() string {
	if u == nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Filename), "."))
}

// File is a blob served back to a client
type File struct {
	Name string
	Data []byte
}
