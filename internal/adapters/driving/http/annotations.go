package http

import (
	"context"
	"net/http"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// handleListAnnotations godoc
// @Summary      List annotations
// @Description  Lists the document's annotations visible to the caller
// @Tags         Annotations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {array}   annotationResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/annotations/ [get]
func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	annotations, err := s.annotationService.ListForDocument(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnnotationResponses(annotations))
}

// handleListAllAnnotations godoc
// @Summary      List all annotations
// @Description  Lists annotations the caller created or that sit on the caller's documents
// @Tags         Annotations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  annotationResponse
// @Router       /annotations/ [get]
func (s *Server) handleListAllAnnotations(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	annotations, err := s.annotationService.ListAll(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnnotationResponses(annotations))
}

// handleCreateAnnotation godoc
// @Summary      Create an annotation
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Document ID"
// @Param        request  body      driving.AnnotationRequest  true  "Annotation"
// @Success      201      {object}  annotationResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /documents/{id}/annotations/ [post]
func (s *Server) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req driving.AnnotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	annotation, err := s.annotationService.Create(r.Context(), uid, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAnnotationResponse(annotation))
}

// handleGetAnnotation godoc
// @Summary      Get an annotation
// @Tags         Annotations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Param        aid  path      string  true  "Annotation ID"
// @Success      200  {object}  annotationResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/annotations/{aid}/ [get]
func (s *Server) handleGetAnnotation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	annotation, err := s.annotationService.Get(r.Context(), uid, r.PathValue("id"), r.PathValue("aid"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnnotationResponse(annotation))
}

// handleReplaceAnnotation godoc
// @Summary      Replace an annotation
// @Description  Content is required; omitted optional fields keep their values
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Document ID"
// @Param        aid      path      string                     true  "Annotation ID"
// @Param        request  body      driving.AnnotationRequest  true  "Annotation"
// @Success      200      {object}  annotationResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /documents/{id}/annotations/{aid}/ [put]
func (s *Server) handleReplaceAnnotation(w http.ResponseWriter, r *http.Request) {
	s.updateAnnotation(w, r, s.annotationService.Replace)
}

// handlePatchAnnotation godoc
// @Summary      Patch an annotation
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Document ID"
// @Param        aid      path      string                     true  "Annotation ID"
// @Param        request  body      driving.AnnotationRequest  true  "Fields to change"
// @Success      200      {object}  annotationResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /documents/{id}/annotations/{aid}/ [patch]
func (s *Server) handlePatchAnnotation(w http.ResponseWriter, r *http.Request) {
	s.updateAnnotation(w, r, s.annotationService.Patch)
}

type annotationUpdater func(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error)

func (s *Server) updateAnnotation(w http.ResponseWriter, r *http.Request, update annotationUpdater) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req driving.AnnotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	annotation, err := update(r.Context(), uid, r.PathValue("id"), r.PathValue("aid"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnnotationResponse(annotation))
}

// handleDeleteAnnotation godoc
// @Summary      Delete an annotation
// @Tags         Annotations
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Param        aid  path  string  true  "Annotation ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/annotations/{aid}/ [delete]
func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := s.annotationService.Delete(r.Context(), uid, r.PathValue("id"), r.PathValue("aid")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
