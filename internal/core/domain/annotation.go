package domain

import "time"

// AnnotationType enumerates the kinds of annotation a user can place
type AnnotationType string

const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationComment   AnnotationType = "comment"
	AnnotationDrawing   AnnotationType = "drawing"
	AnnotationText      AnnotationType = "text"
)

// DefaultAnnotationType is used when a client omits the type
const DefaultAnnotationType = AnnotationComment

// DefaultAnnotationPage is used when a client omits the page
const DefaultAnnotationPage = 1

// AnnotationTypes lists every valid annotation type
func AnnotationTypes() []AnnotationType {
	return []AnnotationType{AnnotationHighlight, AnnotationComment, AnnotationDrawing, AnnotationText}
}

// IsValid checks the type against the known set
func (t AnnotationType) IsValid() bool {
	for _, known := range AnnotationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Annotation is a user note attached to a page of a document
type Annotation struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document"`
	UserID     string         `json:"user"`
	Type       AnnotationType `json:"type"`
	Content    string         `json:"content"`
	Page       int            `json:"page"`
	PositionX  *float64       `json:"position_x"` // Nil for page-level comments
	PositionY  *float64       `json:"position_y"`
	CreatedBy  string         `json:"created_by"` // Creator's username
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// VisibleTo reports whether userID may see the annotation given the document owner
func (a *Annotation) VisibleTo(userID, documentOwnerID string) bool {
	return a.UserID == userID || documentOwnerID == userID
}
