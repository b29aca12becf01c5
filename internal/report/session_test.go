package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomproof/internal/domain"
)

func auditSnap(id int64, room, location, imageKey string) *domain.Snapshot {
	return &domain.Snapshot{
		ID:       id,
		RoomName: room,
		ImageKey: imageKey,
		Analysis: domain.List{Items: []domain.InventoryItem{}, Location: location},
	}
}

func record(id, scanID int64, imageKey string, outcomes ...domain.AuditOutcome) *domain.AuditRecord {
	if outcomes == nil {
		outcomes = []domain.AuditOutcome{}
	}
	return &domain.AuditRecord{ID: id, SessionID: 1, OriginalScanID: scanID, AuditImageKey: imageKey, Outcomes: outcomes}
}

func testSession() *domain.AuditSession {
	return &domain.AuditSession{ID: 1, PropertyID: "prop-7", Name: "Spring Audit", Status: domain.SessionCompleted}
}

func TestBuildAuditReportGroupsByFirstSeenRoom(t *testing.T) {
	snaps := []*domain.Snapshot{
		auditSnap(10, "Kitchen", "North Wall", "k1.jpg"),
		auditSnap(11, "Bedroom", "", "b1.jpg"),
		auditSnap(12, "Kitchen", "South Wall", "k2.jpg"),
	}
	records := []*domain.AuditRecord{
		record(1, 10, "a1.jpg"),
		record(2, 11, "a2.jpg"),
		record(3, 12, "a3.jpg"),
	}

	sr := BuildAuditReport(testSession(), records, snaps)

	// First-seen order, not sorted: Kitchen before Bedroom.
	require.Len(t, sr.Rooms, 2)
	assert.Equal(t, "Kitchen", sr.Rooms[0].RoomName)
	assert.Equal(t, "Bedroom", sr.Rooms[1].RoomName)

	require.Len(t, sr.Rooms[0].Scans, 2)
	assert.Equal(t, "North Wall", sr.Rooms[0].Scans[0].ScanName)
	assert.Equal(t, "South Wall", sr.Rooms[0].Scans[1].ScanName)
	assert.Equal(t, "k1.jpg", sr.Rooms[0].Scans[0].OriginalImageRef)
	assert.Equal(t, "a1.jpg", sr.Rooms[0].Scans[0].AuditImageRef)

	// A snapshot without a captured location falls back to the generic name.
	assert.Equal(t, DefaultScanName, sr.Rooms[1].Scans[0].ScanName)
}

func TestBuildAuditReportUnresolvedRecordKept(t *testing.T) {
	records := []*domain.AuditRecord{
		record(1, 999, "a1.jpg", domain.AuditOutcome{Item: "Chair", ExpectedCount: 1, Status: domain.StatusMissing}),
	}

	sr := BuildAuditReport(testSession(), records, nil)

	require.Len(t, sr.Rooms, 1)
	assert.Equal(t, UnknownRoom, sr.Rooms[0].RoomName)
	require.Len(t, sr.Rooms[0].Scans, 1)
	assert.Equal(t, DefaultScanName, sr.Rooms[0].Scans[0].ScanName)
	assert.Equal(t, "", sr.Rooms[0].Scans[0].OriginalImageRef)
	assert.Equal(t, "a1.jpg", sr.Rooms[0].Scans[0].AuditImageRef)
	assert.Len(t, sr.Rooms[0].Scans[0].Outcomes, 1)
}

func TestBuildAuditReportPreservesRecordCount(t *testing.T) {
	snaps := []*domain.Snapshot{
		auditSnap(10, "Kitchen", "", "k1.jpg"),
	}
	records := []*domain.AuditRecord{
		record(1, 10, "a1.jpg"),
		record(2, 999, "a2.jpg"), // unresolved
		record(3, 10, "a3.jpg"),
	}

	sr := BuildAuditReport(testSession(), records, snaps)

	total := 0
	for _, room := range sr.Rooms {
		total += len(room.Scans)
	}
	assert.Equal(t, len(records), total)
}

func TestBuildAuditReportCarriesSession(t *testing.T) {
	sr := BuildAuditReport(testSession(), nil, nil)

	assert.Equal(t, int64(1), sr.SessionID)
	assert.Equal(t, "Spring Audit", sr.SessionName)
	assert.Equal(t, "prop-7", sr.PropertyID)
	assert.Equal(t, domain.SessionCompleted, sr.Status)
	assert.Empty(t, sr.Rooms)
}
