package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/link"
	"github.com/ppiankov/newscheck/internal/logutil"
	"github.com/ppiankov/newscheck/internal/store"
)

// Error codes returned in the code field of error bodies.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeMalformedLink     = "MALFORMED_LINK"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeBodyTooLarge      = "BODY_TOO_LARGE"
	CodeHistoryDisabled   = "HISTORY_DISABLED"
	CodeInternal          = "INTERNAL"
)

type checkRequest struct {
	URL string `json:"url"`
}

type checkResponse struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	URLChecked      string  `json:"url_checked"`
	Site            string  `json:"site"`
	PostID          string  `json:"post_id"`
	IsTrue          bool    `json:"is_true"`
	TruthPercentage float64 `json:"truth_percentage"`
	Justification   string  `json:"justification"`
	Claim           string  `json:"claim,omitempty"`
	Title           string  `json:"title,omitempty"`
	FetchError      string  `json:"fetch_error,omitempty"`
	CheckedAt       string  `json:"checked_at"`
}

type historyItem struct {
	ID              string  `json:"id"`
	Link            string  `json:"link"`
	Site            string  `json:"site"`
	PostID          string  `json:"post_id"`
	Title           string  `json:"title,omitempty"`
	Claim           string  `json:"claim,omitempty"`
	IsTrue          bool    `json:"is_true"`
	TruthPercentage float64 `json:"truth_percentage"`
	FetchError      string  `json:"fetch_error,omitempty"`
	CheckedAt       string  `json:"checked_at"`
	ElapsedMS       int64   `json:"elapsed_ms"`
}

type errorResponse struct {
	Code             string   `json:"code"`
	Message          string   `json:"message"`
	SupportedFormats []string `json:"supported_formats"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": link.SupportedTemplates()})
}

func (s *Server) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeCheckRequest(r.Body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
			"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "request body must be a JSON object with a url field")
		return
	}

	opts := check.Options{SkipFetch: r.URL.Query().Get("fetch") == "false"}
	res, err := s.checker.Run(r.Context(), req.URL, opts)
	if err != nil {
		status, code := classify(err)
		if status >= 500 {
			logutil.Errorf("check %q: %v", req.URL, err)
			writeError(w, status, code, "check failed")
			return
		}
		writeError(w, status, code, err.Error())
		return
	}

	out := checkResponse{
		ID:              res.ID,
		Status:          "received",
		URLChecked:      res.Link.Link,
		Site:            res.Link.Site.String(),
		PostID:          res.Link.PostID,
		IsTrue:          res.Verdict.IsTrue,
		TruthPercentage: res.Verdict.TruthPercentage,
		Justification:   res.Verdict.Justification,
		Claim:           res.Claim.Text,
		FetchError:      res.FetchError,
		CheckedAt:       res.CheckedAt.UTC().Format(time.RFC3339),
	}
	if res.Fetched() {
		out.Title = res.Content.Title
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, CodeHistoryDisabled, "check history is not enabled")
		return
	}

	filter := store.CheckFilter{Limit: defaultLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxLimit)
	}
	if v := r.URL.Query().Get("site"); v != "" {
		site, ok := link.ParseSite(v)
		if !ok {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "unknown site "+strconv.Quote(v))
			return
		}
		filter.Site = site.String()
	}

	checks, err := s.history.ListChecks(r.Context(), time.Time{}, filter)
	if err != nil {
		logutil.Errorf("list checks: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "could not read history")
		return
	}

	items := make([]historyItem, 0, len(checks))
	for _, c := range checks {
		items = append(items, historyItem{
			ID:              c.ID,
			Link:            c.Link,
			Site:            c.Site,
			PostID:          c.PostID,
			Title:           c.Title,
			Claim:           c.Claim,
			IsTrue:          c.IsTrue,
			TruthPercentage: c.TruthPercentage,
			FetchError:      c.FetchError,
			CheckedAt:       c.CheckedAt.UTC().Format(time.RFC3339),
			ElapsedMS:       c.Elapsed.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"checks": items})
}

// classify maps a pipeline error to an HTTP status and error code.
// decodeCheckRequest reads exactly one JSON object from body.
func decodeCheckRequest(body io.Reader) (checkRequest, error) {
	var req checkRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return checkRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON object")
		}
		return checkRequest{}, err
	}
	return req, nil
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, link.ErrEmptyInput):
		return http.StatusBadRequest, CodeEmptyInput
	case errors.Is(err, link.ErrMalformedLink):
		return http.StatusBadRequest, CodeMalformedLink
	case errors.Is(err, link.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, CodeUnsupportedFormat
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:             code,
		Message:          strings.TrimSpace(message),
		SupportedFormats: link.SupportedTemplates(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logutil.Debugf("write response: %v", err)
	}
}
