package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomproof/internal/domain"
)

type sessionJSON struct {
	ID         int64                `json:"id"`
	PropertyID string               `json:"propertyId"`
	Name       string               `json:"name"`
	Status     domain.SessionStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
}

func toSessionJSON(sess *domain.AuditSession) sessionJSON {
	return sessionJSON{
		ID:         sess.ID,
		PropertyID: sess.PropertyID,
		Name:       sess.Name,
		Status:     sess.Status,
		CreatedAt:  sess.CreatedAt,
	}
}

type auditRecordJSON struct {
	ID             int64                 `json:"id"`
	SessionID      int64                 `json:"sessionId"`
	OriginalScanID int64                 `json:"originalScanId"`
	AuditImageRef  string                `json:"auditImageRef"`
	Outcomes       []domain.AuditOutcome `json:"outcomes"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toAuditRecordJSON(rec *domain.AuditRecord) auditRecordJSON {
	return auditRecordJSON{
		ID:             rec.ID,
		SessionID:      rec.SessionID,
		OriginalScanID: rec.OriginalScanID,
		AuditImageRef:  rec.AuditImageKey,
		Outcomes:       rec.Outcomes,
		CreatedAt:      rec.CreatedAt,
	}
}

type startSessionRequest struct {
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PropertyID) == "" {
		s.writeError(w, http.StatusBadRequest, "propertyId required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Audit " + time.Now().Format("2006-01-02")
	}

	sess, err := s.audits.StartSession(r.Context(), req.PropertyID, req.Name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to start session")
		s.logger.Error("start session failed", "property_id", req.PropertyID, "error", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toSessionJSON(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	propertyID := r.URL.Query().Get("propertyId")
	if propertyID == "" {
		s.writeError(w, http.StatusBadRequest, "propertyId required")
		return
	}

	sessions, err := s.audits.ListSessions(r.Context(), propertyID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		s.logger.Error("list sessions failed", "property_id", propertyID, "error", err)
		return
	}

	out := make([]sessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionJSON(sess))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.audits.CompleteSession(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to complete session")
		s.logger.Error("complete session failed", "session_id", id, "error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordRescan(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	imageData, mimeType, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	originalScanID, err := strconv.ParseInt(r.FormValue("originalScanId"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "originalScanId required")
		return
	}

	rec, err := s.audits.RecordRescan(r.Context(), sessionID, originalScanID, imageData, mimeType)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to record rescan")
		s.logger.Error("record rescan failed", "session_id", sessionID, "error", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toAuditRecordJSON(rec))
}

type adjustOutcomeRequest struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
}

func (s *Server) handleAdjustOutcome(w http.ResponseWriter, r *http.Request) {
	recordID, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req adjustOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.audits.AdjustOutcome(r.Context(), recordID, req.Index, req.Delta)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to adjust outcome")
		s.logger.Error("adjust outcome failed", "record_id", recordID, "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, toAuditRecordJSON(rec))
}

func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	sr, err := s.audits.SessionReport(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to build report")
		s.logger.Error("session report failed", "session_id", id, "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, sr)
}

func (s *Server) handleSessionDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	doc, err := s.audits.SessionDocument(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to build document")
		s.logger.Error("session document failed", "session_id", id, "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}
