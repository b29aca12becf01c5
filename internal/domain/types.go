package domain

import "time"

// SnapshotStatus tracks how far a captured snapshot got through analysis.
type SnapshotStatus string

const (
	// SnapshotUploaded means the photo was stored but analysis found nothing.
	SnapshotUploaded SnapshotStatus = "uploaded"
	// SnapshotComplete means analysis produced at least one item.
	SnapshotComplete SnapshotStatus = "complete"
)

// SessionStatus is the lifecycle state of an audit session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// AuditStatus is the per-item verdict of a reconciliation.
type AuditStatus string

const (
	StatusMatch    AuditStatus = "Match"
	StatusMismatch AuditStatus = "Mismatch"
	StatusMissing  AuditStatus = "Missing"
)

// InventoryItem is one detected or manually entered item. Identity within a
// list is positional; duplicate names may coexist as separate entries.
type InventoryItem struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Condition string `json:"condition"`
}

// List is the canonical analysis shape every component downstream of the
// normalizer operates on.
type List struct {
	Items    []InventoryItem `json:"items"`
	Location string          `json:"location"`
}

// Snapshot is one photographed inventory record for a room at a point in time.
type Snapshot struct {
	ID        int64
	RoomName  string
	Status    SnapshotStatus
	ImageKey  string
	MimeType  string
	Analysis  List
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuditSession is a named container for one audit pass over a property.
type AuditSession struct {
	ID         int64
	PropertyID string
	Name       string
	Status     SessionStatus
	CreatedAt  time.Time
}

// AuditOutcome is the derived verdict for one expected item. Outcomes are
// value objects; edits produce new slices rather than mutating in place.
type AuditOutcome struct {
	Item          string      `json:"item"`
	ExpectedCount int         `json:"expectedCount"`
	FoundCount    int         `json:"foundCount"`
	Status        AuditStatus `json:"status"`
}

// AuditRecord links one re-photographed snapshot to its session, carrying the
// reconciliation outcomes for that scan.
type AuditRecord struct {
	ID             int64
	SessionID      int64
	OriginalScanID int64
	AuditImageKey  string
	Outcomes       []AuditOutcome
	CreatedAt      time.Time
}
