package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"roomproof/internal/domain"
	"roomproof/internal/inventory"
)

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Create(ctx context.Context, roomName string, status domain.SnapshotStatus, imageKey, mimeType string, analysis domain.List) (*domain.Snapshot, error) {
	payload, err := marshalAnalysis(analysis)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (room_name, status, image_key, mime_type, analysis) VALUES (?, ?, ?, ?, ?)
	`, normalizeRoomName(roomName), status, imageKey, mimeType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SnapshotStore) GetByID(ctx context.Context, id int64) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	var analysis string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, room_name, status, image_key, mime_type, analysis, created_at, updated_at
		FROM snapshots WHERE id = ?
	`, id).Scan(&snap.ID, &snap.RoomName, &snap.Status, &snap.ImageKey, &snap.MimeType, &analysis, &snap.CreatedAt, &snap.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap.Analysis = inventory.NormalizeJSON([]byte(analysis))
	return snap, nil
}

// List returns all snapshots newest first, the order room sections expect.
func (s *SnapshotStore) List(ctx context.Context) ([]*domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_name, status, image_key, mime_type, analysis, created_at, updated_at
		FROM snapshots ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var snaps []*domain.Snapshot
	for rows.Next() {
		snap := &domain.Snapshot{}
		var analysis string
		if err := rows.Scan(&snap.ID, &snap.RoomName, &snap.Status, &snap.ImageKey, &snap.MimeType, &analysis, &snap.CreatedAt, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Analysis = inventory.NormalizeJSON([]byte(analysis))
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snaps, nil
}

// Update rewrites a snapshot's room name and analysis after a manual edit,
// re-serializing the canonical shape. Status is left as captured.
func (s *SnapshotStore) Update(ctx context.Context, id int64, roomName string, analysis domain.List) error {
	payload, err := marshalAnalysis(analysis)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE snapshots SET room_name = ?, analysis = ?, updated_at = datetime('now') WHERE id = ?
	`, normalizeRoomName(roomName), payload, id)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("snapshot not found")
	}

	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("snapshot not found")
	}

	return nil
}

// marshalAnalysis writes the canonical {items, location} shape; always an
// object, never the legacy bare array (those are still accepted on read).
func marshalAnalysis(analysis domain.List) (string, error) {
	canonical := inventory.Normalize(analysis)
	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return string(payload), nil
}

func normalizeRoomName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unassigned"
	}
	return name
}
