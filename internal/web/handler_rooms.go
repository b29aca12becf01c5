package web

import (
	"net/http"

	"roomproof/internal/report"
)

type roomSectionJSON struct {
	Title string         `json:"title"`
	Data  []snapshotJSON `json:"data"`
}

func toRoomSectionsJSON(sections []report.RoomSection) []roomSectionJSON {
	out := make([]roomSectionJSON, 0, len(sections))
	for _, section := range sections {
		data := make([]snapshotJSON, 0, len(section.Snapshots))
		for _, snap := range section.Snapshots {
			data = append(data, toSnapshotJSON(snap))
		}
		out = append(out, roomSectionJSON{Title: section.Title, Data: data})
	}
	return out
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	sections, err := s.inventory.ListRoomSections(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list rooms")
		s.logger.Error("list rooms failed", "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, toRoomSectionsJSON(sections))
}

func (s *Server) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		title = "Inventory"
	}

	doc, err := s.inventory.InventoryDocument(r.Context(), title)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to build report")
		s.logger.Error("inventory report failed", "error", err)
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}
