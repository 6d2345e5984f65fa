package http

import (
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// SearchResponse lists matches of a query inside one document.
// Error is set, with status 200, when the document has no searchable text.
// @Description In-document search result
type SearchResponse struct {
	Matches []domain.Match `json:"matches"`
	Error   string         `json:"error,omitempty" example:"Document doesn't have searchable text content"`
}

// documentFileURL is the download route of a document's own blob
func documentFileURL(documentID string) string {
	return "/documents/" + documentID + "/file"
}

// versionFileURL is the download route of a version's blob
func versionFileURL(documentID, versionID string) string {
	return "/documents/" + documentID + "/versions/" + versionID + "/file"
}

// documentResponse is the list projection of a document
// @Description Document summary
type documentResponse struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	File             string              `json:"file"`
	FileType         string              `json:"file_type"`
	OwnerID          string              `json:"owner_id"`
	Owner            *domain.UserSummary `json:"owner,omitempty"`
	IsOCRProcessed   bool                `json:"is_ocr_processed"`
	TextContent      *string             `json:"text_content"`
	URL              string              `json:"url"`
	CurrentVersion   *string             `json:"current_version"`
	CurrentVersionID *string             `json:"current_version_id"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// documentDetailResponse adds the lineage and annotations to a document
// @Description Document with versions and annotations
type documentDetailResponse struct {
	documentResponse
	Versions    []versionResponse    `json:"versions"`
	Annotations []annotationResponse `json:"annotations"`
}

// versionResponse is the projection of a version
// @Description Document version
type versionResponse struct {
	ID            string    `json:"id"`
	Document      string    `json:"document"`
	VersionNumber int       `json:"version_number"`
	File          string    `json:"file"`
	FileURL       string    `json:"file_url"`
	CreatedBy     *string   `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// annotationResponse is the projection of an annotation
// @Description Annotation on a document page
type annotationResponse struct {
	ID        string                `json:"id"`
	Document  string                `json:"document"`
	User      string                `json:"user"`
	Type      domain.AnnotationType `json:"type"`
	Content   string                `json:"content"`
	Page      int                   `json:"page"`
	PositionX *float64              `json:"position_x"`
	PositionY *float64              `json:"position_y"`
	CreatedBy string                `json:"created_by"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func newDocumentResponse(doc *domain.Document) documentResponse {
	url := documentFileURL(doc.ID)
	if doc.CurrentVersionID != nil {
		url = versionFileURL(doc.ID, *doc.CurrentVersionID)
	}
	return documentResponse{
		ID:               doc.ID,
		Name:             doc.Name,
		File:             doc.BlobKey,
		FileType:         doc.FileType,
		OwnerID:          doc.OwnerID,
		IsOCRProcessed:   doc.IsOCRProcessed,
		TextContent:      doc.TextContent,
		URL:              url,
		CurrentVersion:   doc.CurrentVersionID,
		CurrentVersionID: doc.CurrentVersionID,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func newDocumentResponses(docs []*domain.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentResponse(d))
	}
	return out
}

func newDocumentDetailResponse(detail *domain.DocumentDetail) documentDetailResponse {
	resp := documentDetailResponse{
		documentResponse: newDocumentResponse(detail.Document),
		Versions:         newVersionResponses(detail.Versions),
		Annotations:      newAnnotationResponses(detail.Annotations),
	}
	resp.Owner = detail.Owner
	return resp
}

func newVersionResponse(v *domain.Version) versionResponse {
	return versionResponse{
		ID:            v.ID,
		Document:      v.DocumentID,
		VersionNumber: v.VersionNumber,
		File:          v.BlobKey,
		FileURL:       versionFileURL(v.DocumentID, v.ID),
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}

func newVersionResponses(versions []*domain.Version) []versionResponse {
	out := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, newVersionResponse(v))
	}
	return out
}

func newAnnotationResponse(a *domain.Annotation) annotationResponse {
	return annotationResponse{
		ID:        a.ID,
		Document:  a.DocumentID,
		User:      a.UserID,
		Type:      a.Type,
		Content:   a.Content,
		Page:      a.Page,
		PositionX: a.PositionX,
		PositionY: a.PositionY,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func newAnnotationResponses(annotations []*domain.Annotation) []annotationResponse {
	out := make([]annotationResponse, 0, len(annotations))
	for _, a := range annotations {
		out = append(out, newAnnotationResponse(a))
	}
	return out
}
