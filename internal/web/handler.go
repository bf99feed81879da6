package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/driven"
	"github.com/BetterCallFirewall/SecurityCenter/internal/export"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/BetterCallFirewall/SecurityCenter/internal/storage"
	"github.com/BetterCallFirewall/SecurityCenter/internal/subscription"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

const defaultHistoryLimit = 50

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	userID := userFrom(r)
	premium := subscription.Resolve(r.Context(), s.resolver, userID)

	id := uuid.NewString()
	ctx := driven.WithAnalysisID(r.Context(), id)
	if ch := strings.TrimSpace(r.Header.Get(HeaderProgressChannel)); ch != "" {
		ctx = driven.WithProgressChannel(ctx, ch)
	}
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	log.Printf("🔍 Analysis %s started (premium=%t)", id, premium)
	result := s.analyzer.PerformAnalysis(ctx, req, premium)

	// Сохраняем снимок владельца; анонимные анализы не хранятся.
	// Ошибка хранилища не ломает ответ.
	if userID != "" {
		record := &models.AnalysisRecordDTO{
			ID:        id,
			UserID:    userID,
			Premium:   premium,
			Request:   req,
			Result:    result,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.storage.Save(context.WithoutCancel(r.Context()), record); err != nil {
			log.Printf("⚠️ Failed to store analysis %s: %v", id, err)
		}
	}

	writeJSON(w, http.StatusOK, models.AnalyzeResponseDTO{ID: id, Result: result})
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var in models.GeneralQueryInput
	if !s.decode(w, r, &in) {
		return
	}

	ctx := r.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	writeJSON(w, http.StatusOK, models.AssistantResponseDTO{Response: s.analyzer.AskAssistant(ctx, in)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var findings []models.VulnerabilityFinding
	if !s.decode(w, r, &findings) {
		return
	}
	writeExport(w, r.URL.Query().Get("format"), findings)
}

// userFrom returns the caller identity; empty means anonymous
func userFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}

// requireUser rejects anonymous access to the history
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := userFrom(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, HeaderUserID+" header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	summaries, err := s.storage.List(r.Context(), userID, limit)
	if err != nil {
		log.Printf("❌ Failed to list analyses: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	record, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleExportAnalysis(w http.ResponseWriter, r *http.Request) {
	record, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var findings []models.VulnerabilityFinding
	if record.Result != nil {
		findings = record.Result.AllFindings
	}
	writeExport(w, r.URL.Query().Get("format"), findings)
}

// lookup loads a record of the caller; records of other users are 404
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*models.AnalysisRecordDTO, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}

	id := r.PathValue("id")
	record, err := s.storage.Get(r.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}
	if err != nil {
		log.Printf("❌ Failed to load analysis %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return nil, false
	}
	return record, true
}

// schemaTypes are the API types whose JSON schema can be fetched
var schemaTypes = map[string]func() any{
	"analysis_request":      func() any { return &models.AnalysisRequest{} },
	"analysis_result":       func() any { return &models.AnalysisResult{} },
	"vulnerability_finding": func() any { return &models.VulnerabilityFinding{} },
	"attack_vector":         func() any { return &models.AttackVector{} },
	"remediation_playbook":  func() any { return &models.RemediationPlaybook{} },
	"general_query":         func() any { return &models.GeneralQueryInput{} },
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	newValue, ok := schemaTypes[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown schema")
		return
	}
	reflector := jsonschema.Reflector{DoNotReference: true}
	writeJSON(w, http.StatusOK, reflector.Reflect(newValue()))
}

func writeExport(w http.ResponseWriter, format string, findings []models.VulnerabilityFinding) {
	formatter, err := export.Get(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := formatter.Format(findings)
	if err != nil {
		log.Printf("❌ Export as %s failed: %v", formatter.Name(), err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "application/json; charset=utf-8"
	if formatter.Name() == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decode reads a JSON body bounded by MaxBodyBytes; it writes the error response itself
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
