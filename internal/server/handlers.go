package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/model"
	"github.com/sells-group/autodoc/internal/pipeline"
	"github.com/sells-group/autodoc/internal/reader"
)

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// generateResponse wraps a pipeline result with an optional error message
// so failed runs still report how far they got.
type generateResponse struct {
	*pipeline.Result
	Error string `json:"error,omitempty"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerate accepts a multipart component spec upload, runs the
// pipeline on it, and returns the run result as JSON.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"parsing multipart form: " + err.Error()})

		return
	}

	project := strings.TrimSpace(r.FormValue("project"))
	if project == "" {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"project is required"})

		return
	}

	opts := s.opts

	if v := r.FormValue("strict"); v != "" {
		strict, perr := strconv.ParseBool(v)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest,
				errorResponse{"strict must be a boolean"})

			return
		}

		opts.Strict = strict
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"file is required"})

		return
	}
	defer file.Close() //nolint:errcheck

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{fmt.Sprintf("unsupported spec format %q, expected .csv or .xlsx", ext)})

		return
	}

	specPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.log.Error("server: saving upload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"saving upload failed"})

		return
	}

	result, err := pipeline.New(s.store, s.renderer, opts).Run(r.Context(), pipeline.Request{
		SpecPath: specPath,
		Project:  project,
		Engineer: strings.TrimSpace(r.FormValue("engineer")),
	})
	if err != nil {
		writeJSON(w, generateStatus(err),
			generateResponse{Result: result, Error: err.Error()})

		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Result: result})
}

// generateStatus maps a failed run to an HTTP status code. Input problems
// are the client's fault; everything else is ours.
func generateStatus(err error) int {
	switch {
	case errors.Is(err, reader.ErrMalformedInput),
		errors.Is(err, reader.ErrUnsupportedFormat),
		errors.Is(err, pipeline.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// saveUpload copies an uploaded spec into the uploads directory under a
// collision-free name and returns the stored path.
func (s *server) saveUpload(src io.Reader, original string) (string, error) {
	u := uuid.New()
	name := fmt.Sprintf("%x_%s", u[:4], filepath.Base(original))
	path := filepath.Join(s.uploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "server: create upload file %s", path)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close() //nolint:errcheck
		return "", eris.Wrap(err, "server: write upload")
	}

	if err := dst.Close(); err != nil {
		return "", eris.Wrap(err, "server: close upload")
	}

	return path, nil
}

// handleLogs returns every run log entry in append order.
func (s *server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ReadAll(r.Context())
	if err != nil {
		s.log.Error("server: reading log failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"reading log failed"})

		return
	}

	if entries == nil {
		entries = []model.LogEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleStats returns aggregate statistics over the run log.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.log.Error("server: computing stats failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"computing stats failed"})

		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleDownload serves a generated report PDF from the output directory.
func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Reject anything that is not a plain file name inside the output dir.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid report name"})

		return
	}

	path := filepath.Join(s.outputDir, name)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound,
			errorResponse{"report not found"})

		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// handleSample returns a starter component spec, as a workbook by default
// or as CSV with ?format=csv.
func (s *server) handleSample(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="sample_components.xlsx"`)

		if err := reader.SampleXLSX(w); err != nil {
			s.log.Error("server: writing sample workbook failed", zap.Error(err))
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="sample_components.csv"`)

		if err := reader.SampleCSV(w); err != nil {
			s.log.Error("server: writing sample csv failed", zap.Error(err))
		}
	default:
		writeJSON(w, http.StatusBadRequest,
			errorResponse{fmt.Sprintf("unsupported sample format %q", format)})
	}
}
