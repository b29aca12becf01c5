package report

import "roomproof/internal/domain"

// Placeholder labels for audit records whose originating snapshot cannot be
// resolved. Such records are kept in the report rather than dropped.
const (
	UnknownRoom     = "Unknown Room"
	DefaultScanName = "Scan"
)

// ScanEntry is one re-photographed snapshot's reconciliation results.
type ScanEntry struct {
	ScanName         string                `json:"scanName"`
	OriginalImageRef string                `json:"originalImageRef"`
	AuditImageRef    string                `json:"auditImageRef"`
	Outcomes         []domain.AuditOutcome `json:"outcomes"`
}

// RoomReport is one room's scans within a session report, in the order the
// records were supplied.
type RoomReport struct {
	RoomName string      `json:"roomName"`
	Scans    []ScanEntry `json:"scans"`
}

// SessionReport is the full per-session report structure.
type SessionReport struct {
	SessionID   int64                `json:"sessionId"`
	SessionName string               `json:"sessionName"`
	PropertyID  string               `json:"propertyId"`
	Status      domain.SessionStatus `json:"status"`
	Rooms       []RoomReport         `json:"rooms"`
}

// BuildAuditReport resolves each record's originating snapshot and buckets
// the scans by room in first-seen order (room buckets are not sorted; the
// record sequence drives the layout). Unresolved provenance gets the
// placeholder labels instead of dropping the record, so the total scan count
// across rooms always equals the number of input records.
//
// The scan name is the originating snapshot's location when one was captured,
// else the generic placeholder. Image refs are opaque storage keys passed
// through unchanged.
func BuildAuditReport(session *domain.AuditSession, records []*domain.AuditRecord, snapshots []*domain.Snapshot) SessionReport {
	byID := make(map[int64]*domain.Snapshot, len(snapshots))
	for _, snap := range snapshots {
		byID[snap.ID] = snap
	}

	byRoom := make(map[string]int)
	rooms := make([]RoomReport, 0)

	for _, rec := range records {
		roomName := UnknownRoom
		scanName := DefaultScanName
		originalRef := ""

		if snap, ok := byID[rec.OriginalScanID]; ok {
			roomName = snap.RoomName
			originalRef = snap.ImageKey
			if snap.Analysis.Location != "" {
				scanName = snap.Analysis.Location
			}
		}

		idx, ok := byRoom[roomName]
		if !ok {
			idx = len(rooms)
			byRoom[roomName] = idx
			rooms = append(rooms, RoomReport{RoomName: roomName, Scans: []ScanEntry{}})
		}
		rooms[idx].Scans = append(rooms[idx].Scans, ScanEntry{
			ScanName:         scanName,
			OriginalImageRef: originalRef,
			AuditImageRef:    rec.AuditImageKey,
			Outcomes:         rec.Outcomes,
		})
	}

	return SessionReport{
		SessionID:   session.ID,
		SessionName: session.Name,
		PropertyID:  session.PropertyID,
		Status:      session.Status,
		Rooms:       rooms,
	}
}
