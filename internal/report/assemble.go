package report

import "roomproof/internal/domain"

// Document is the flat rooms → scans → rows tree handed to the rendering
// collaborator. Renderers consume it verbatim; no further transformation is
// expected downstream.
type Document struct {
	Title string         `json:"title"`
	Rooms []DocumentRoom `json:"rooms"`
}

type DocumentRoom struct {
	Name  string         `json:"name"`
	Scans []DocumentScan `json:"scans"`
}

type DocumentScan struct {
	Name             string `json:"name"`
	OriginalImageRef string `json:"originalImageRef,omitempty"`
	AuditImageRef    string `json:"auditImageRef,omitempty"`
	Rows             []Row  `json:"rows"`
}

// Row is one rendered line: an inventory item, or an audit verdict when the
// document was assembled from a session report.
type Row struct {
	Item          string             `json:"item"`
	Count         int                `json:"count"`
	Condition     string             `json:"condition,omitempty"`
	ExpectedCount int                `json:"expectedCount,omitempty"`
	FoundCount    int                `json:"foundCount,omitempty"`
	Status        domain.AuditStatus `json:"status,omitempty"`
}

// AssembleInventory flattens room sections into a renderable document. Each
// snapshot becomes one scan named by its captured location.
func AssembleInventory(title string, sections []RoomSection) Document {
	rooms := make([]DocumentRoom, 0, len(sections))
	for _, section := range sections {
		room := DocumentRoom{Name: section.Title, Scans: make([]DocumentScan, 0, len(section.Snapshots))}
		for _, snap := range section.Snapshots {
			scan := DocumentScan{
				Name:             scanTitle(snap.Analysis.Location),
				OriginalImageRef: snap.ImageKey,
				Rows:             make([]Row, 0, len(snap.Analysis.Items)),
			}
			for _, item := range snap.Analysis.Items {
				scan.Rows = append(scan.Rows, Row{Item: item.Name, Count: item.Count, Condition: item.Condition})
			}
			room.Scans = append(room.Scans, scan)
		}
		rooms = append(rooms, room)
	}
	return Document{Title: title, Rooms: rooms}
}

// AssembleAudit flattens a session report into a renderable document with one
// verdict row per reconciled item.
func AssembleAudit(sr SessionReport) Document {
	rooms := make([]DocumentRoom, 0, len(sr.Rooms))
	for _, rr := range sr.Rooms {
		room := DocumentRoom{Name: rr.RoomName, Scans: make([]DocumentScan, 0, len(rr.Scans))}
		for _, scan := range rr.Scans {
			ds := DocumentScan{
				Name:             scan.ScanName,
				OriginalImageRef: scan.OriginalImageRef,
				AuditImageRef:    scan.AuditImageRef,
				Rows:             make([]Row, 0, len(scan.Outcomes)),
			}
			for _, oc := range scan.Outcomes {
				ds.Rows = append(ds.Rows, Row{
					Item:          oc.Item,
					Count:         oc.FoundCount,
					ExpectedCount: oc.ExpectedCount,
					FoundCount:    oc.FoundCount,
					Status:        oc.Status,
				})
			}
			room.Scans = append(room.Scans, ds)
		}
		rooms = append(rooms, room)
	}
	return Document{Title: sr.SessionName, Rooms: rooms}
}

func scanTitle(location string) string {
	if location == "" {
		return DefaultScanName
	}
	return location
}
