package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"roomproof/internal/domain"
	"roomproof/internal/imagestore"
	"roomproof/internal/inventory"
	"roomproof/internal/report"
	"roomproof/internal/vision"
)

// snapshotRepository is the subset of store.SnapshotStore the services require.
type snapshotRepository interface {
	Create(ctx context.Context, roomName string, status domain.SnapshotStatus, imageKey, mimeType string, analysis domain.List) (*domain.Snapshot, error)
	GetByID(ctx context.Context, id int64) (*domain.Snapshot, error)
	List(ctx context.Context) ([]*domain.Snapshot, error)
	Update(ctx context.Context, id int64, roomName string, analysis domain.List) error
	Delete(ctx context.Context, id int64) error
}

type InventoryService struct {
	snapshots snapshotRepository
	analyzer  vision.Analyzer
	images    imagestore.ImageStore
	logger    *slog.Logger
}

func NewInventoryService(snapshots snapshotRepository, analyzer vision.Analyzer, images imagestore.ImageStore, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		snapshots: snapshots,
		analyzer:  analyzer,
		images:    images,
		logger:    logger,
	}
}

// CaptureSnapshot stores a room photo, runs the vision collaborator over it,
// and persists the snapshot with the normalized item list. Analysis is best
// effort: a vision failure stores the snapshot with an empty list and status
// "uploaded" rather than losing the photo.
func (s *InventoryService) CaptureSnapshot(ctx context.Context, roomName string, imageData []byte, mimeType string) (*domain.Snapshot, error) {
	s.logger.Info("capture snapshot started", "room", roomName, "mime_type", mimeType, "bytes", len(imageData))

	imageKey, err := s.images.Save(ctx, "scan", mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	s.logger.Debug("image saved", "room", roomName, "image_key", imageKey)

	analysis := domain.List{Items: []domain.InventoryItem{}}
	result, err := s.analyzer.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		s.logger.Error("vision analysis failed, storing snapshot without items", "room", roomName, "error", err)
	} else {
		analysis = result.List
	}

	status := domain.SnapshotUploaded
	if len(analysis.Items) > 0 {
		status = domain.SnapshotComplete
	}

	snap, err := s.snapshots.Create(ctx, roomName, status, imageKey, mimeType, analysis)
	if err != nil {
		if derr := s.images.Delete(ctx, imageKey); derr != nil {
			s.logger.Error("failed to roll back image after create error", "image_key", imageKey, "error", derr)
		}
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	s.logger.Info("capture snapshot complete", "snapshot_id", snap.ID, "status", snap.Status, "items", len(snap.Analysis.Items))
	return snap, nil
}

// ListRoomSections groups all snapshots (newest first) into the room sections
// the room list renders from.
func (s *InventoryService) ListRoomSections(ctx context.Context) ([]report.RoomSection, error) {
	snaps, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return report.GroupByRoom(snaps), nil
}

func (s *InventoryService) GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error) {
	return s.snapshots.GetByID(ctx, id)
}

// UpdateSnapshot applies a manual edit of room name, location, and items,
// re-serializing the canonical analysis shape.
func (s *InventoryService) UpdateSnapshot(ctx context.Context, id int64, roomName, location string, items []domain.InventoryItem) (*domain.Snapshot, error) {
	analysis := inventory.Normalize(domain.List{Items: items, Location: location})
	if err := s.snapshots.Update(ctx, id, roomName, analysis); err != nil {
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	return s.snapshots.GetByID(ctx, id)
}

// DeleteSnapshot removes the snapshot row and, best effort, its stored image.
// Snapshots are leaves: nothing else cascades.
func (s *InventoryService) DeleteSnapshot(ctx context.Context, id int64) error {
	snap, err := s.snapshots.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("snapshot not found")
	}

	if err := s.snapshots.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	if err := s.images.Delete(ctx, snap.ImageKey); err != nil {
		s.logger.Error("failed to delete image file", "image_key", snap.ImageKey, "error", err)
	}
	return nil
}

// InventoryDocument assembles the full current inventory into the
// document-ready tree the rendering collaborator consumes.
func (s *InventoryService) InventoryDocument(ctx context.Context, title string) (report.Document, error) {
	sections, err := s.ListRoomSections(ctx)
	if err != nil {
		return report.Document{}, err
	}
	return report.AssembleInventory(title, sections), nil
}
