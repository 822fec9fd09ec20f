package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/analysis"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	// multipart parts beyond this are spooled to disk by net/http
	multipartMemory = 8 << 20
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type analysisErrorResponse struct {
	Error string         `json:"error"`
	RawAI map[string]any `json:"raw_ai,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, detailResponse{Detail: fmt.Sprintf(format, args...)})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.banner})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	jd := r.FormValue("job_description")
	if strings.TrimSpace(jd) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "job_description is required")
		return
	}

	result, err := s.deps.Analyzer.Analyze(r.Context(), analysis.Request{
		FileName:       name,
		Data:           data,
		JobDescription: jd,
	})
	if err != nil {
		var aerr *analysis.Error
		if errors.As(err, &aerr) && aerr.Kind == analysis.KindInput {
			writeDetail(w, http.StatusBadRequest, "%s", aerr.Message)
			return
		}
		// model-side failures travel in a 200 body; clients check the error key
		resp := analysisErrorResponse{Error: err.Error()}
		if aerr != nil {
			resp.Error, resp.RawAI = aerr.Message, aerr.RawAI
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	text, err := s.deps.Extractor.Extract(data, name)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "File parsing error: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": s.deps.Assistant.Summarize(r.Context(), text),
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Trends.GetTrends(r.Context()))
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	fields := map[string]string{}
	for _, key := range []string{"resume_text", "job_description", "missing_skills"} {
		if _, present := r.Form[key]; !present {
			writeDetail(w, http.StatusUnprocessableEntity, "%s is required", key)
			return
		}
		fields[key] = r.FormValue(key)
	}

	text, err := s.deps.Assistant.Optimize(r.Context(),
		fields["resume_text"], fields["job_description"], fields["missing_skills"])
	if err != nil {
		s.logger.Error("optimize resume failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "%s", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"optimized_text": text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeDetail(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list history failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if records == nil {
		records = []model.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records})
}

// parseForm reads a multipart or urlencoded body under the upload limit.
// It writes the error response itself and reports whether to continue.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeDetail(w, http.StatusBadRequest, "upload exceeds %d MB", s.cfg.MaxUploadMB)
		return false
	}
	writeDetail(w, http.StatusBadRequest, "invalid form: %v", err)
	return false
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "read upload: %v", err)
		return "", nil, false
	}
	return hdr.Filename, data, true
}
