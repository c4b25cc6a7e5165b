package trigger_sync

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
	msgOAuthError        = "требуется повторная авторизация календаря"
)

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

// Handle POST /api/v1/businesses/{businessId}/calendar/sync
// Частичные сбои не считаются ошибкой запроса: они возвращаются
// в поле errors при статусе 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/calendar/sync - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	result, err := h.service.FullSync(r.Context(), businessID)
	if err != nil {
		switch {
		case errors.Is(err, calendarsync.ErrNotConfigured):
			h.logger.Warn("POST /businesses/{id}/calendar/sync - Not configured: business_id=%d", businessID)
			handlers.RespondError(w, http.StatusPreconditionFailed, msgNotConfigured)

		case errors.Is(err, calendarsync.ErrOAuth):
			h.logger.Error("POST /businesses/{id}/calendar/sync - OAuth failure: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondError(w, http.StatusUnauthorized, msgOAuthError)

		default:
			h.logger.Error("POST /businesses/{id}/calendar/sync - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /businesses/{id}/calendar/sync - Sync finished: business_id=%d, pushed=%d, pulled=%d, errors=%d",
		businessID, result.ReservationsPushed, result.EventsPulled, len(result.Errors))
	handlers.RespondJSON(w, http.StatusOK, toSyncResultResponse(result))
}
