package list_calendars

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	"github.com/lobba/scheduling-service/internal/service/calendarsync"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgNotConfigured     = "календарь не подключен для этого бизнеса"
	msgUpstreamError     = "ошибка провайдера календаря"
)

// CalendarListResponse HTTP response model
type CalendarListResponse struct {
	Calendars []calendarsync.CalendarInfo `json:"calendars"`
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

// Handle GET /api/v1/businesses/{businessId}/calendar/calendars
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/calendar/calendars - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	calendars, err := h.service.ListCalendars(r.Context(), businessID)
	if err != nil {
		switch {
		case errors.Is(err, calendarsync.ErrNotConfigured):
			h.logger.Warn("GET /businesses/{id}/calendar/calendars - Not configured: business_id=%d", businessID)
			handlers.RespondError(w, http.StatusPreconditionFailed, msgNotConfigured)

		case errors.Is(err, calendarsync.ErrOAuth), errors.Is(err, calendarsync.ErrUpstream):
			h.logger.Error("GET /businesses/{id}/calendar/calendars - Provider error: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgUpstreamError)

		default:
			h.logger.Error("GET /businesses/{id}/calendar/calendars - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/calendar/calendars - %d calendars returned: business_id=%d",
		len(calendars), businessID)
	handlers.RespondJSON(w, http.StatusOK, CalendarListResponse{Calendars: calendars})
}
