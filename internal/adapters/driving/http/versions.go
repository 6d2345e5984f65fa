package http

import "net/http"

// Version endpoints. On the top-level /versions/ routes there is no {id}
// segment, so the document ID is empty and any of the caller's documents matches.

// handleListVersions godoc
// @Summary      List versions
// @Description  Lists a document's versions, highest number first
// @Tags         Versions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {array}   versionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/versions/ [get]
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	versions, err := s.versionService.List(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVersionResponses(versions))
}

// handleListAllVersions godoc
// @Summary      List all versions
// @Description  Lists versions of every document the caller owns
// @Tags         Versions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  versionResponse
// @Router       /versions/ [get]
func (s *Server) handleListAllVersions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	versions, err := s.versionService.ListAll(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVersionResponses(versions))
}

// handleCreateVersion godoc
// @Summary      Upload a new version
// @Description  Stores the file as the next version and makes it current
// @Tags         Versions
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Document ID"
// @Param        file  formData  file    true  "File to upload"
// @Success      201   {object}  versionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse  "Another upload holds the version lock"
// @Router       /documents/{id}/versions/ [post]
func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	upload, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	version, err := s.versionService.Create(r.Context(), uid, r.PathValue("id"), upload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newVersionResponse(version))
}

// handleGetVersion godoc
// @Summary      Get a version
// @Tags         Versions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Param        vid  path      string  true  "Version ID"
// @Success      200  {object}  versionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/versions/{vid}/ [get]
func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	version, err := s.versionService.Get(r.Context(), uid, r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVersionResponse(version))
}

// handleDeleteVersion godoc
// @Summary      Delete a version
// @Description  Deleting the current version promotes the highest remaining one. The only version cannot be deleted.
// @Tags         Versions
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Param        vid  path  string  true  "Version ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Only version of the document"
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/versions/{vid}/ [delete]
func (s *Server) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := s.versionService.Delete(r.Context(), uid, r.PathValue("id"), r.PathValue("vid")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleVersionFile godoc
// @Summary      Download a version
// @Tags         Versions
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Param        vid  path  string  true  "Version ID"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/versions/{vid}/file [get]
func (s *Server) handleVersionFile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	file, err := s.versionService.OpenFile(r.Context(), uid, r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	serveFile(w, r, file)
}
