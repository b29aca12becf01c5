// Package report groups snapshots and audit outcomes into the structures the
// rendering collaborator consumes. Everything here is a pure transform over
// in-memory copies; sections are rebuilt on every call, never mutated in place.
package report

import (
	"sort"
	"strings"

	"roomproof/internal/domain"
)

// UnassignedRoom is the section title for snapshots without a room name.
const UnassignedRoom = "Unassigned"

// RoomSection is one room's snapshots, in the order the caller supplied them.
type RoomSection struct {
	Title     string             `json:"title"`
	Snapshots []*domain.Snapshot `json:"data"`
}

// GroupByRoom partitions snapshots into sections keyed by trimmed room name,
// sorted ascending by title. The sort is plain byte-order string comparison
// and the key is trimmed but not case-folded, so "Kitchen" and "kitchen" are
// distinct sections. That quirk is deliberate until product says otherwise;
// TestGroupByRoomCaseSensitive pins it.
func GroupByRoom(snapshots []*domain.Snapshot) []RoomSection {
	byTitle := make(map[string]int)
	sections := make([]RoomSection, 0)

	for _, snap := range snapshots {
		title := roomTitle(snap.RoomName)
		idx, ok := byTitle[title]
		if !ok {
			idx = len(sections)
			byTitle[title] = idx
			sections = append(sections, RoomSection{Title: title, Snapshots: []*domain.Snapshot{}})
		}
		sections[idx].Snapshots = append(sections[idx].Snapshots, snap)
	}

	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Title < sections[j].Title
	})
	return sections
}

func roomTitle(name string) string {
	title := strings.TrimSpace(name)
	if title == "" {
		return UnassignedRoom
	}
	return title
}
