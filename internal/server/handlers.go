package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/floorcad/pkg/buildinfo"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/floorplan"
	"github.com/matzehuels/floorcad/pkg/pipeline"
	"github.com/matzehuels/floorcad/pkg/storage"
)

type compileResponse struct {
	Status  string             `json:"status"`
	ID      string             `json:"id"`
	Message string             `json:"message"`
	Data    floorplan.Document `json:"data"`
	Stats   pipeline.Stats     `json:"stats"`
	Formats []string           `json:"formats"`
	Cached  bool               `json:"cached"`
}

type drawingResponse struct {
	ID      string            `json:"id"`
	Formats []string          `json:"formats"`
	Links   map[string]string `json:"links"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
	Field string      `json:"field,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput, "request body too large")
		return
	}

	plan, err := floorplan.Decode(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := s.opts
	opts.DrawingID = r.URL.Query().Get("id")
	if v := r.URL.Query().Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "refresh must be true or false, got %q", v))
			return
		}
		opts.Refresh = refresh
	}

	result, err := s.runner.Execute(r.Context(), plan, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{
		Status:  "success",
		ID:      result.DrawingID,
		Message: "Floor plan generated successfully",
		Data:    plan,
		Stats:   result.Stats,
		Formats: opts.Formats,
		Cached:  result.CacheInfo.CompileHit && result.CacheInfo.RenderHit,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDrawingID(id); err != nil {
		s.fail(w, r, err)
		return
	}

	formats, err := s.runner.Store.List(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(formats) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeNotFound, "drawing %q not found", id))
		return
	}

	links := make(map[string]string, len(formats))
	for _, f := range formats {
		links[f] = "/api/drawings/" + id + "/download?format=" + f
	}
	writeJSON(w, http.StatusOK, drawingResponse{ID: id, Formats: formats, Links: links})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatDXF
	}
	if err := errors.ValidateDrawingID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := storage.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	a, err := s.runner.Store.Get(r.Context(), id, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", a.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// fail logs err and writes its JSON error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
	}

	writeJSON(w, status, errorResponse{
		Code:  code,
		Error: errors.UserMessage(err),
		Field: errors.GetField(err),
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	if errors.IsDocumentError(err) {
		return http.StatusUnprocessableEntity
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidID, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSinkFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}
