package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk
const multipartMemory = 32 << 20

// readUpload parses a multipart body and returns the named file part.
// A missing part yields a nil upload; the services decide whether that is an error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (*domain.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file upload")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file upload")
		return nil, false
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// serveFile writes a blob back to the client
func serveFile(w http.ResponseWriter, r *http.Request, file *domain.File) {
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(file.Name, `"`, "")+`"`)
	http.ServeContent(w, r, file.Name, time.Time{}, bytes.NewReader(file.Data))
}

// Document endpoints

// handleListDocuments godoc
// @Summary      List documents
// @Description  Lists the caller's documents, newest first, optionally filtered by name or text
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Case-insensitive filter on name and text content"
// @Success      200     {array}   documentResponse
// @Router       /documents/ [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	docs, err := s.documentService.List(r.Context(), uid, domain.DocumentFilter{
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponses(docs))
}

// handleCreateDocument godoc
// @Summary      Upload a document
// @Description  Stores the file, records version 1 and extracts text from PDFs
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "File to upload"
// @Param        name       formData  string  false  "Display name (defaults to the filename)"
// @Param        file_type  formData  string  false  "File type tag (defaults to the extension)"
// @Success      201        {object}  documentResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      413        {object}  ErrorResponse
// @Router       /documents/ [post]
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	upload, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	doc, err := s.documentService.Create(r.Context(), uid, driving.CreateDocumentRequest{
		Name:     r.FormValue("name"),
		FileType: r.FormValue("file_type"),
		Upload:   upload,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newDocumentResponse(doc))
}

// handleGetDocument godoc
// @Summary      Get a document
// @Description  Returns a document with its owner, versions and visible annotations
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  documentDetailResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/ [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	detail, err := s.documentService.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentDetailResponse(detail))
}

// handleUpdateDocument godoc
// @Summary      Update a document
// @Description  Changes the name or file type. PUT and PATCH both leave omitted fields untouched.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Document ID"
// @Param        request  body      driving.UpdateDocumentRequest  true  "Fields to change"
// @Success      200      {object}  documentResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /documents/{id}/ [patch]
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req driving.UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := s.documentService.Update(r.Context(), uid, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponse(doc))
}

// handleDeleteDocument godoc
// @Summary      Delete a document
// @Description  Removes the document with its versions, annotations and files
// @Tags         Documents
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/ [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := s.documentService.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDocumentFile godoc
// @Summary      Download a document
// @Description  Streams the current version's file
// @Tags         Documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/file [get]
func (s *Server) handleDocumentFile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	file, err := s.documentService.OpenFile(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	serveFile(w, r, file)
}

// handleSearch godoc
// @Summary      Search inside a document
// @Description  Case-insensitive search with page numbers and previews. A document without text answers 200 with an error message.
// @Tags         Search
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Document ID"
// @Param        query  query     string  false  "Text to find"
// @Success      200    {object}  SearchResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /documents/{id}/search/ [get]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	result, err := s.searchService.Search(r.Context(), uid, r.PathValue("id"), r.URL.Query().Get("query"))
	switch {
	case errors.Is(err, domain.ErrNoSearchableContent):
		writeJSON(w, http.StatusOK, SearchResponse{
			Matches: []domain.Match{},
			Error:   "Document doesn't have searchable text content",
		})
		return
	case errors.Is(err, domain.ErrExtractionFailed):
		writeJSON(w, http.StatusOK, SearchResponse{
			Matches: []domain.Match{},
			Error:   "Could not extract text from document",
		})
		return
	case err != nil:
		s.writeServiceError(w, r, err)
		return
	}

	matches := result.Matches
	if matches == nil {
		matches = []domain.Match{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Matches: matches})
}
