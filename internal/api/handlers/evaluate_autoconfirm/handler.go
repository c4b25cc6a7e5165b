package evaluate_autoconfirm

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

// Handle POST /api/v1/reservations/{reservationId}/auto-confirmation/evaluate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	reservationID, err := strconv.ParseInt(vars["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/auto-confirmation/evaluate - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	decision, err := h.service.Evaluate(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, autoconfirm.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/auto-confirmation/evaluate - Reservation not found: reservation_id=%d",
				reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /reservations/{id}/auto-confirmation/evaluate - Evaluation failed: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/auto-confirmation/evaluate - Decision: reservation_id=%d, can_auto_confirm=%v",
		reservationID, decision.ShouldAutoConfirm)
	handlers.RespondJSON(w, http.StatusOK, FromDecision(decision))
}
