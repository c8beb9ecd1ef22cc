package adapthttp

import (
	"fmt"
	"log"
	"net/http"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// handleSync serves POST /sync/{user_id}: pull fresh data from every
// provider the user has credentials for.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid user_id: %w", err))
		return
	}

	if err := s.ingest.SyncUser(r.Context(), userID); err != nil {
		log.Printf("sync user %s: %v", userID, err)
		writeError(w, http.StatusBadGateway, fmt.Errorf("sync failed for user %s", userID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
