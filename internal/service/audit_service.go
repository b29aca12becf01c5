package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"roomproof/internal/audit"
	"roomproof/internal/domain"
	"roomproof/internal/imagestore"
	"roomproof/internal/report"
	"roomproof/internal/vision"
)

// sessionRepository is the subset of store.SessionStore AuditService requires.
type sessionRepository interface {
	Create(ctx context.Context, propertyID, name string) (*domain.AuditSession, error)
	GetByID(ctx context.Context, id int64) (*domain.AuditSession, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.AuditSession, error)
	Complete(ctx context.Context, id int64) error
}

// auditRecordRepository is the subset of store.AuditRecordStore AuditService requires.
type auditRecordRepository interface {
	Create(ctx context.Context, sessionID, originalScanID int64, auditImageKey string, outcomes []domain.AuditOutcome) (*domain.AuditRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.AuditRecord, error)
	ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.AuditRecord, error)
	UpdateOutcomes(ctx context.Context, id int64, outcomes []domain.AuditOutcome) error
}

type AuditService struct {
	sessions  sessionRepository
	records   auditRecordRepository
	snapshots snapshotRepository
	analyzer  vision.Analyzer
	images    imagestore.ImageStore
	logger    *slog.Logger
}

func NewAuditService(
	sessions sessionRepository,
	records auditRecordRepository,
	snapshots snapshotRepository,
	analyzer vision.Analyzer,
	images imagestore.ImageStore,
	logger *slog.Logger,
) *AuditService {
	return &AuditService{
		sessions:  sessions,
		records:   records,
		snapshots: snapshots,
		analyzer:  analyzer,
		images:    images,
		logger:    logger,
	}
}

func (s *AuditService) StartSession(ctx context.Context, propertyID, name string) (*domain.AuditSession, error) {
	return s.sessions.Create(ctx, propertyID, name)
}

func (s *AuditService) GetSession(ctx context.Context, id int64) (*domain.AuditSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *AuditService) ListSessions(ctx context.Context, propertyID string) ([]*domain.AuditSession, error) {
	return s.sessions.ListByProperty(ctx, propertyID)
}

func (s *AuditService) CompleteSession(ctx context.Context, id int64) error {
	return s.sessions.Complete(ctx, id)
}

// RecordRescan analyzes a re-photograph of an existing snapshot, reconciles
// the detected items against the snapshot's expected list, and persists one
// audit record for the scan.
func (s *AuditService) RecordRescan(ctx context.Context, sessionID, originalScanID int64, imageData []byte, mimeType string) (*domain.AuditRecord, error) {
	s.logger.Info("rescan started", "session_id", sessionID, "original_scan_id", originalScanID, "bytes", len(imageData))

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found")
	}
	if sess.Status != domain.SessionInProgress {
		return nil, fmt.Errorf("session already completed")
	}

	original, err := s.snapshots.GetByID(ctx, originalScanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get original snapshot: %w", err)
	}
	if original == nil {
		return nil, fmt.Errorf("original snapshot not found")
	}

	result, err := s.analyzer.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		// Unlike capture, a rescan without analysis is useless: an empty
		// found list would mark every item Missing.
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}
	s.logger.Info("rescan analysis complete", "session_id", sessionID, "items_found", len(result.List.Items))

	imageKey, err := s.images.Save(ctx, fmt.Sprintf("audit_%d", sessionID), mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	outcomes := audit.Reconcile(original.Analysis.Items, result.List.Items)

	rec, err := s.records.Create(ctx, sessionID, originalScanID, imageKey, outcomes)
	if err != nil {
		if derr := s.images.Delete(ctx, imageKey); derr != nil {
			s.logger.Error("failed to roll back image after create error", "image_key", imageKey, "error", derr)
		}
		return nil, fmt.Errorf("failed to create audit record: %w", err)
	}

	s.logger.Info("rescan complete", "session_id", sessionID, "record_id", rec.ID)
	return rec, nil
}

// AdjustOutcome applies a manual found-count correction to one outcome of a
// record and persists the resulting list. An out-of-range index leaves the
// outcomes unchanged.
func (s *AuditService) AdjustOutcome(ctx context.Context, recordID int64, index, delta int) (*domain.AuditRecord, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("audit record not found")
	}

	adjusted := audit.AdjustFound(rec.Outcomes, index, delta)
	if err := s.records.UpdateOutcomes(ctx, recordID, adjusted); err != nil {
		return nil, fmt.Errorf("failed to update outcomes: %w", err)
	}

	rec.Outcomes = adjusted
	return rec, nil
}

// SessionReport builds the room-grouped report for a completed session. Only
// completed sessions aggregate into reports; an in-progress session is an
// error here, not in the aggregator, which accepts sessions in either state.
func (s *AuditService) SessionReport(ctx context.Context, sessionID int64) (report.SessionReport, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return report.SessionReport{}, fmt.Errorf("failed to get session: %w", err)
	}
	if sess == nil {
		return report.SessionReport{}, fmt.Errorf("session not found")
	}
	if sess.Status != domain.SessionCompleted {
		return report.SessionReport{}, fmt.Errorf("session not completed")
	}

	records, err := s.records.ListBySessionID(ctx, sessionID)
	if err != nil {
		return report.SessionReport{}, fmt.Errorf("failed to list audit records: %w", err)
	}

	snaps, err := s.snapshots.List(ctx)
	if err != nil {
		return report.SessionReport{}, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return report.BuildAuditReport(sess, records, snaps), nil
}

// SessionDocument assembles a completed session's report into the
// document-ready tree for rendering.
func (s *AuditService) SessionDocument(ctx context.Context, sessionID int64) (report.Document, error) {
	sr, err := s.SessionReport(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	return report.AssembleAudit(sr), nil
}
