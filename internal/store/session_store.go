package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"roomproof/internal/domain"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, propertyID, name string) (*domain.AuditSession, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_sessions (property_id, name, status) VALUES (?, ?, ?)
	`, propertyID, name, domain.SessionInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SessionStore) GetByID(ctx context.Context, id int64) (*domain.AuditSession, error) {
	sess := &domain.AuditSession{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, name, status, created_at FROM audit_sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.PropertyID, &sess.Name, &sess.Status, &sess.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}

func (s *SessionStore) ListByProperty(ctx context.Context, propertyID string) ([]*domain.AuditSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, name, status, created_at FROM audit_sessions
		WHERE property_id = ? ORDER BY created_at DESC, id DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var sessions []*domain.AuditSession
	for rows.Next() {
		sess := &domain.AuditSession{}
		if err := rows.Scan(&sess.ID, &sess.PropertyID, &sess.Name, &sess.Status, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

func (s *SessionStore) Complete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE audit_sessions SET status = ? WHERE id = ?
	`, domain.SessionCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}
