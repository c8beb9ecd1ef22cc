package adapthttp

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// handleMetric serves GET /metric/{metric_name}?user_id=&from=&to=.
// from and to are RFC 3339 datetimes; an absent endpoint leaves that
// side unbounded.
func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("metric_name")

	userID, err := domain.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid user_id: %w", err))
		return
	}

	tr, err := timeRangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	series, err := s.metrics.FetchMetric(r.Context(), name, userID, tr)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("fetch %s for user %s: %v", name, userID, err)
			// Internal detail stays in the log.
			writeError(w, status, fmt.Errorf("failed to fetch %s", name))
			return
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func statusFor(err error) int {
	var decodeErr *domain.DecodeRangeError
	switch {
	case errors.Is(err, domain.ErrUnknownMetric):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.As(err, &decodeErr):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func timeRangeQuery(r *http.Request) (domain.TimeRange, error) {
	var tr domain.TimeRange
	for key, dst := range map[string]**time.Time{"from": &tr.From, "to": &tr.To} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return domain.TimeRange{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		t = t.UTC()
		*dst = &t
	}
	return tr, nil
}
