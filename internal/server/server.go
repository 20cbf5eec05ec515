// Package server exposes the question-answering service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bull/docqa/internal/retriever"
	"github.com/bull/docqa/internal/service"
)

// maxUploadBytes caps the size of one uploaded document.
const maxUploadBytes = 10 << 20

// Server routes HTTP requests to the service.
type Server struct {
	svc    *service.Service
	mux    *http.ServeMux
	logger *slog.Logger
}

// New creates the HTTP server.
func New(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, mux: http.NewServeMux(), logger: logger}
	s.mux.HandleFunc("GET /", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "docqa",
		"index_size":  s.svc.IndexSize(),
		"index_ready": s.svc.Ready(),
	})
}

// handleHealth is liveness only: the process is up even when no
// documents are indexed yet.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart request must carry a 'file' field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	res, err := s.svc.Upload(r.Context(), header.Filename, string(content))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
	Engine   string `json:"engine"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	// A query parameter overrides the body's engine choice.
	if engine := r.URL.Query().Get("engine"); engine != "" {
		req.Engine = engine
	}

	answer, err := s.svc.Ask(r.Context(), req.Question, req.Engine, req.K)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// writeServiceError maps service errors onto HTTP statuses. Validation
// problems are the caller's fault, an empty index means the service is
// not ready, and anything else is a backend failure whose detail stays
// in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrEmptyDocument),
		errors.Is(err, service.ErrDuplicateDocument),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, service.ErrUnknownEngine),
		errors.Is(err, retriever.ErrInvalidTopK):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, retriever.ErrIndexEmpty):
		writeError(w, http.StatusConflict, "no documents indexed yet")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusBadGateway, "backend request failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
