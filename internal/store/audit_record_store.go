package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"roomproof/internal/audit"
	"roomproof/internal/domain"
)

type AuditRecordStore struct {
	db *sql.DB
}

func NewAuditRecordStore(db *sql.DB) *AuditRecordStore {
	return &AuditRecordStore{db: db}
}

func (s *AuditRecordStore) Create(ctx context.Context, sessionID, originalScanID int64, auditImageKey string, outcomes []domain.AuditOutcome) (*domain.AuditRecord, error) {
	payload, err := audit.EncodeOutcomes(outcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records (session_id, original_scan_id, audit_image_key, comparison_json) VALUES (?, ?, ?, ?)
	`, sessionID, originalScanID, auditImageKey, string(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AuditRecordStore) GetByID(ctx context.Context, id int64) (*domain.AuditRecord, error) {
	rec := &domain.AuditRecord{}
	var comparison string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, original_scan_id, audit_image_key, comparison_json, created_at
		FROM audit_records WHERE id = ?
	`, id).Scan(&rec.ID, &rec.SessionID, &rec.OriginalScanID, &rec.AuditImageKey, &comparison, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	rec.Outcomes = audit.DecodeOutcomes([]byte(comparison))
	return rec, nil
}

// ListBySessionID returns a session's records in the order they were taken,
// which is the order reports bucket them in.
func (s *AuditRecordStore) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, original_scan_id, audit_image_key, comparison_json, created_at
		FROM audit_records WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []*domain.AuditRecord
	for rows.Next() {
		rec := &domain.AuditRecord{}
		var comparison string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.OriginalScanID, &rec.AuditImageKey, &comparison, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Outcomes = audit.DecodeOutcomes([]byte(comparison))
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}

	return records, nil
}

func (s *AuditRecordStore) UpdateOutcomes(ctx context.Context, id int64, outcomes []domain.AuditOutcome) error {
	payload, err := audit.EncodeOutcomes(outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE audit_records SET comparison_json = ? WHERE id = ?
	`, string(payload), id)
	if err != nil {
		return fmt.Errorf("failed to update audit record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("audit record not found")
	}

	return nil
}
