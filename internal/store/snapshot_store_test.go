package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomproof/internal/db"
	"roomproof/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func testAnalysis() domain.List {
	return domain.List{
		Items: []domain.InventoryItem{
			{Name: "Sofa", Count: 1, Condition: "Good"},
			{Name: "Lamp", Count: 2, Condition: "Worn"},
		},
		Location: "East Wall",
	}
}

func TestSnapshotStoreCreate(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	snap, err := snaps.Create(ctx, "Living Room", domain.SnapshotComplete, "scan_abc.jpg", "image/jpeg", testAnalysis())
	require.NoError(t, err)
	assert.NotZero(t, snap.ID)
	assert.Equal(t, "Living Room", snap.RoomName)
	assert.Equal(t, domain.SnapshotComplete, snap.Status)
	assert.Equal(t, "scan_abc.jpg", snap.ImageKey)
	assert.Equal(t, "image/jpeg", snap.MimeType)
	assert.Equal(t, testAnalysis(), snap.Analysis)
}

func TestSnapshotStoreCreateTrimsRoomName(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	snap, err := snaps.Create(ctx, "  Bath ", domain.SnapshotUploaded, "k.jpg", "image/jpeg", domain.List{})
	require.NoError(t, err)
	assert.Equal(t, "Bath", snap.RoomName)

	snap, err = snaps.Create(ctx, "   ", domain.SnapshotUploaded, "k2.jpg", "image/jpeg", domain.List{})
	require.NoError(t, err)
	assert.Equal(t, "Unassigned", snap.RoomName)
}

func TestSnapshotStoreGetByID_NotFound(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))

	snap, err := snaps.GetByID(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotStoreReadsLegacyPayload(t *testing.T) {
	d := openTestDB(t)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	// A legacy row holds a bare item array instead of the wrapped object.
	result, err := d.ExecContext(ctx, `
		INSERT INTO snapshots (room_name, status, image_key, analysis)
		VALUES ('Kitchen', 'complete', 'old.jpg', '[{"name":"Kettle","count":1,"condition":"Good"}]')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	snap, err := snaps.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Analysis.Items, 1)
	assert.Equal(t, domain.InventoryItem{Name: "Kettle", Count: 1, Condition: "Good"}, snap.Analysis.Items[0])
	assert.Equal(t, "", snap.Analysis.Location)
}

func TestSnapshotStoreReadsStringEncodedPayload(t *testing.T) {
	d := openTestDB(t)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	// The wrapped object JSON-encoded as a string, as older writers stored it.
	result, err := d.ExecContext(ctx, `
		INSERT INTO snapshots (room_name, status, image_key, analysis)
		VALUES ('Kitchen', 'complete', 'old.jpg', '"{\"items\":[{\"name\":\"Kettle\",\"count\":1}],\"location\":\"Counter\"}"')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	snap, err := snaps.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Analysis.Items, 1)
	assert.Equal(t, "Counter", snap.Analysis.Location)
}

func TestSnapshotStoreReadsGarbagePayloadAsEmpty(t *testing.T) {
	d := openTestDB(t)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	result, err := d.ExecContext(ctx, `
		INSERT INTO snapshots (room_name, status, image_key, analysis)
		VALUES ('Kitchen', 'uploaded', 'bad.jpg', 'not json')
	`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)

	snap, err := snaps.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Empty(t, snap.Analysis.Items)
}

func TestSnapshotStoreList_NewestFirst(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	first, err := snaps.Create(ctx, "Kitchen", domain.SnapshotUploaded, "1.jpg", "image/jpeg", domain.List{})
	require.NoError(t, err)
	second, err := snaps.Create(ctx, "Bedroom", domain.SnapshotUploaded, "2.jpg", "image/jpeg", domain.List{})
	require.NoError(t, err)

	list, err := snaps.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Equal timestamps resolve by descending id.
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestSnapshotStoreUpdate(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	snap, err := snaps.Create(ctx, "Kitchen", domain.SnapshotComplete, "k.jpg", "image/jpeg", testAnalysis())
	require.NoError(t, err)

	edited := domain.List{
		Items:    []domain.InventoryItem{{Name: "Toaster", Count: 1}},
		Location: "Counter",
	}
	err = snaps.Update(ctx, snap.ID, "Kitchenette", edited)
	require.NoError(t, err)

	got, err := snaps.GetByID(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchenette", got.RoomName)
	assert.Equal(t, edited, got.Analysis)
	assert.Equal(t, domain.SnapshotComplete, got.Status, "manual edits do not change status")
}

func TestSnapshotStoreUpdate_NotFound(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))

	err := snaps.Update(context.Background(), 99999, "Kitchen", domain.List{})
	assert.Error(t, err)
}

func TestSnapshotStoreDelete(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	snap, err := snaps.Create(ctx, "Kitchen", domain.SnapshotUploaded, "k.jpg", "image/jpeg", domain.List{})
	require.NoError(t, err)

	require.NoError(t, snaps.Delete(ctx, snap.ID))

	got, err := snaps.GetByID(ctx, snap.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, snaps.Delete(ctx, snap.ID))
}
