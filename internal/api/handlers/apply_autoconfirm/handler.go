package apply_autoconfirm

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	"github.com/lobba/scheduling-service/internal/service/autoconfirm"
)

const (
	msgInvalidReservationID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgNotPending           = "запись не находится в статусе ожидания"
)

type Handler struct {
	service AutoConfirmService
	logger  Logger
}

func NewHandler(service AutoConfirmService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/auto-confirmation/apply
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	reservationID, err := strconv.ParseInt(vars["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/auto-confirmation/apply - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	result, err := h.service.Apply(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, autoconfirm.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/auto-confirmation/apply - Reservation not found: reservation_id=%d",
				reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, autoconfirm.ErrNotPending):
			h.logger.Warn("POST /reservations/{id}/auto-confirmation/apply - Not pending: reservation_id=%d",
				reservationID)
			handlers.RespondError(w, http.StatusConflict, msgNotPending)

		default:
			h.logger.Error("POST /reservations/{id}/auto-confirmation/apply - Apply failed: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/auto-confirmation/apply - Result: reservation_id=%d, applied=%v",
		reservationID, result.Applied)
	handlers.RespondJSON(w, http.StatusOK, FromApplyResult(result))
}
