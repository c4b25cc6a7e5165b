package set_primary_calendar

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingCalendarID  = "не указан ID календаря"
	msgNotConfigured      = "календарь не подключен для этого бизнеса"
)

// SetPrimaryCalendarRequest HTTP request model
type SetPrimaryCalendarRequest struct {
	CalendarID string `json:"calendarId"`
}

type Handler struct {
	service CalendarSyncService
	logger  Logger
}

func NewHandler(service CalendarSyncService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/calendar/primary
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/calendar/primary - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req SetPrimaryCalendarRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/calendar/primary - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.CalendarID == "" {
		h.logger.Warn("PUT /businesses/{id}/calendar/primary - Missing calendar ID: business_id=%d", businessID)
		handlers.RespondBadRequest(w, msgMissingCalendarID)
		return
	}

	if err := h.service.SetPrimaryCalendar(r.Context(), businessID, req.CalendarID); err != nil {
		switch {
		case errors.Is(err, calendarsync.ErrNotConfigured):
			h.logger.Warn("PUT /businesses/{id}/calendar/primary - Not configured: business_id=%d", businessID)
			handlers.RespondError(w, http.StatusPreconditionFailed, msgNotConfigured)

		default:
			h.logger.Error("PUT /businesses/{id}/calendar/primary - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/calendar/primary - Primary calendar set: business_id=%d, calendar=%s",
		businessID, req.CalendarID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
