package calendar_auth

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
)

const msgInvalidBusinessID = "некорректный ID бизнеса"

// AuthURLResponse HTTP response model
type AuthURLResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
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

// Handle GET /api/v1/businesses/{businessId}/calendar/auth
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/calendar/auth - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	authURL := h.service.InitiateAuth(businessID)

	h.logger.Info("GET /businesses/{id}/calendar/auth - Auth URL issued: business_id=%d", businessID)
	handlers.RespondJSON(w, http.StatusOK, AuthURLResponse{AuthorizationURL: authURL})
}
