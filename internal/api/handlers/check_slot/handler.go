package check_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	checkSlot "github.com/lobba/scheduling-service/internal/usecase/check_slot"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeWindow  = "некорректное временное окно, ожидается RFC3339"
	msgBusinessNotFound   = "бизнес не найден"
)

type Handler struct {
	useCase CheckSlotUseCase
	logger  Logger
}

func NewHandler(useCase CheckSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/businesses/{businessId}/check-slot
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/check-slot - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req CheckSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /businesses/{id}/check-slot - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(businessID)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/check-slot - Invalid time window: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeWindow)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkSlot.ErrBusinessNotFound):
			h.logger.Warn("POST /businesses/{id}/check-slot - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, checkSlot.ErrInvalidInput):
			h.logger.Warn("POST /businesses/{id}/check-slot - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTimeWindow)

		default:
			h.logger.Error("POST /businesses/{id}/check-slot - Failed to check slot: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /businesses/{id}/check-slot - Slot checked: business_id=%d, available=%v",
		businessID, result.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
