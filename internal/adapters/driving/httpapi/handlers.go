package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// loadResponse is the body of a successful load.
type loadResponse struct {
	Message       string `json:"message"`
	RecordsLoaded int    `json:"records_loaded"`
	ChunksCreated int    `json:"chunks_created"`
}

// searchResponse is the body of a control id lookup.
type searchResponse struct {
	ControlID string          `json:"stig_id"`
	Results   []domain.Source `json:"results"`
}

// queryRequest accepts rhel_version as a string or a number.
type queryRequest struct {
	Question    string          `json:"question"`
	ControlID   string          `json:"stig_id"`
	RHELVersion json.RawMessage `json:"rhel_version"`
}

// releaseHint normalises a raw rhel_version value: "9", "09", 9 and "RHEL 9" all give "9".
func releaseHint(raw json.RawMessage) (domain.ReleaseVersion, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return domain.ReleaseUnknown, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return domain.ParseReleaseVersion(str), nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return domain.ParseReleaseVersion(num.String()), nil
	}
	return domain.ReleaseUnknown, errors.New("rhel_version must be a string or number")
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	version, err := releaseHint(body.RHELVersion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := domain.QueryRequest{Question: body.Question, ControlID: body.ControlID, ReleaseVersion: version}

	// Failed answers are still 200: the body carries the degraded text and status.
	answer := s.ports.Query.Answer(r.Context(), req)
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("file_path")
	if path == "" {
		if err := r.ParseForm(); err == nil {
			path = r.PostForm.Get("file_path")
		}
	}
	if path == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	format, err := domain.FormatFromPath(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported file format")
		return
	}

	report, err := s.ports.Ingest.LoadDocument(r.Context(), path, format)
	if err != nil {
		logger.Warn("load %s failed: %v", path, err)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Message:       fmt.Sprintf("Successfully loaded %d STIG controls", report.RecordsLoaded),
		RecordsLoaded: report.RecordsLoaded,
		ChunksCreated: report.SegmentsCreated,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	controlID := r.PathValue("stig_id")

	results, err := s.ports.Retrieval.SearchByControlID(r.Context(), controlID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		ControlID: controlID,
		Results:   domain.SourcesFromResults(results),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ports.Health.Check(r.Context()))
}
