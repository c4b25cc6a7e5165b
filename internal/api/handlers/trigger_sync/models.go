package trigger_sync

import (
	"time"

	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

// SyncResultResponse HTTP response model
type SyncResultResponse struct {
	ReservationsPushed int      `json:"reservationsPushed"`
	EventsRemoved      int      `json:"eventsRemoved"`
	EventsPulled       int      `json:"eventsPulled"`
	Errors             []string `json:"errors"`
	Timestamp          string   `json:"timestamp"`
}

func toSyncResultResponse(result *calendarsync.SyncResult) SyncResultResponse {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}

	return SyncResultResponse{
		ReservationsPushed: result.ReservationsPushed,
		EventsRemoved:      result.EventsRemoved,
		EventsPulled:       result.EventsPulled,
		Errors:             errs,
		Timestamp:          result.Timestamp.UTC().Format(time.RFC3339),
	}
}
