package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"roomproof/internal/domain"
	"roomproof/internal/inventory"
	"roomproof/internal/vision"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAnalyzer returns a canned result or error.
type fakeAnalyzer struct {
	list domain.List
	err  error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, r io.Reader, mimeType string) (*vision.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &vision.AnalysisResult{List: f.list}, nil
}

// fakeImageStore keeps image bytes in a map keyed by generated storage keys.
type fakeImageStore struct {
	nextKey int
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: map[string][]byte{}}
}

func (f *fakeImageStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.nextKey++
	key := fmt.Sprintf("%s_%d.jpg", prefix, f.nextKey)
	f.saved[key] = data
	return key, nil
}

func (f *fakeImageStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	data, ok := f.saved[storageKey]
	if !ok {
		return nil, "", fmt.Errorf("image not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), "image/jpeg", nil
}

func (f *fakeImageStore) Delete(ctx context.Context, storageKey string) error {
	delete(f.saved, storageKey)
	f.deleted = append(f.deleted, storageKey)
	return nil
}

// fakeSnapshotRepo is an in-memory snapshotRepository.
type fakeSnapshotRepo struct {
	nextID    int64
	snapshots map[int64]*domain.Snapshot
	order     []int64
	createErr error
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: map[int64]*domain.Snapshot{}}
}

func (f *fakeSnapshotRepo) Create(ctx context.Context, roomName string, status domain.SnapshotStatus, imageKey, mimeType string, analysis domain.List) (*domain.Snapshot, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	name := strings.TrimSpace(roomName)
	if name == "" {
		name = "Unassigned"
	}
	snap := &domain.Snapshot{
		ID:       f.nextID,
		RoomName: name,
		Status:   status,
		ImageKey: imageKey,
		MimeType: mimeType,
		Analysis: inventory.Normalize(analysis),
	}
	f.snapshots[snap.ID] = snap
	f.order = append(f.order, snap.ID)
	return snap, nil
}

func (f *fakeSnapshotRepo) GetByID(ctx context.Context, id int64) (*domain.Snapshot, error) {
	return f.snapshots[id], nil
}

func (f *fakeSnapshotRepo) List(ctx context.Context) ([]*domain.Snapshot, error) {
	out := make([]*domain.Snapshot, 0, len(f.order))
	// Newest first, matching the store.
	for i := len(f.order) - 1; i >= 0; i-- {
		if snap, ok := f.snapshots[f.order[i]]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) Update(ctx context.Context, id int64, roomName string, analysis domain.List) error {
	snap, ok := f.snapshots[id]
	if !ok {
		return fmt.Errorf("snapshot not found")
	}
	name := strings.TrimSpace(roomName)
	if name == "" {
		name = "Unassigned"
	}
	snap.RoomName = name
	snap.Analysis = inventory.Normalize(analysis)
	return nil
}

func (f *fakeSnapshotRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.snapshots[id]; !ok {
		return fmt.Errorf("snapshot not found")
	}
	delete(f.snapshots, id)
	return nil
}

// fakeSessionRepo is an in-memory sessionRepository.
type fakeSessionRepo struct {
	nextID   int64
	sessions map[int64]*domain.AuditSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int64]*domain.AuditSession{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, propertyID, name string) (*domain.AuditSession, error) {
	f.nextID++
	sess := &domain.AuditSession{ID: f.nextID, PropertyID: propertyID, Name: name, Status: domain.SessionInProgress}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*domain.AuditSession, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) ListByProperty(ctx context.Context, propertyID string) ([]*domain.AuditSession, error) {
	var out []*domain.AuditSession
	for _, sess := range f.sessions {
		if sess.PropertyID == propertyID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Complete(ctx context.Context, id int64) error {
	sess, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("session not found")
	}
	sess.Status = domain.SessionCompleted
	return nil
}

// fakeRecordRepo is an in-memory auditRecordRepository.
type fakeRecordRepo struct {
	nextID  int64
	records map[int64]*domain.AuditRecord
	order   []int64
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[int64]*domain.AuditRecord{}}
}

func (f *fakeRecordRepo) Create(ctx context.Context, sessionID, originalScanID int64, auditImageKey string, outcomes []domain.AuditOutcome) (*domain.AuditRecord, error) {
	f.nextID++
	if outcomes == nil {
		outcomes = []domain.AuditOutcome{}
	}
	rec := &domain.AuditRecord{
		ID:             f.nextID,
		SessionID:      sessionID,
		OriginalScanID: originalScanID,
		AuditImageKey:  auditImageKey,
		Outcomes:       outcomes,
	}
	f.records[rec.ID] = rec
	f.order = append(f.order, rec.ID)
	return rec, nil
}

func (f *fakeRecordRepo) GetByID(ctx context.Context, id int64) (*domain.AuditRecord, error) {
	return f.records[id], nil
}

func (f *fakeRecordRepo) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.AuditRecord, error) {
	var out []*domain.AuditRecord
	for _, id := range f.order {
		if rec, ok := f.records[id]; ok && rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) UpdateOutcomes(ctx context.Context, id int64, outcomes []domain.AuditOutcome) error {
	rec, ok := f.records[id]
	if !ok {
		return fmt.Errorf("audit record not found")
	}
	rec.Outcomes = outcomes
	return nil
}
