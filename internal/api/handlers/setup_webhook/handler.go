package setup_webhook

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	"github.com/lobba/scheduling-service/internal/service/calendarsync"
	"github.com/lobba/scheduling-service/internal/service/webhookmgr"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotConfigured      = "календарь не подключен для этого бизнеса"
	msgUpstreamError      = "ошибка провайдера календаря"
)

// SetupWebhookRequest HTTP request model
type SetupWebhookRequest struct {
	CallbackURL string `json:"callbackUrl"`
}

// ChannelResponse HTTP response model
type ChannelResponse struct {
	ChannelID  string `json:"channelId"`
	ResourceID string `json:"resourceId"`
	Expiration string `json:"expiration"`
}

type Handler struct {
	service WebhookService
	logger  Logger
}

func NewHandler(service WebhookService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/businesses/{businessId}/calendar/webhook
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/calendar/webhook - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	// Тело опционально: при пустом callbackUrl берется адрес из конфигурации
	var req SetupWebhookRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /businesses/{id}/calendar/webhook - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	channel, err := h.service.SetupWebhook(r.Context(), businessID, req.CallbackURL)
	if err != nil {
		switch {
		case errors.Is(err, calendarsync.ErrNotConfigured):
			h.logger.Warn("POST /businesses/{id}/calendar/webhook - Not configured: business_id=%d", businessID)
			handlers.RespondError(w, http.StatusPreconditionFailed, msgNotConfigured)

		case errors.Is(err, webhookmgr.ErrUpstream):
			h.logger.Error("POST /businesses/{id}/calendar/webhook - Provider error: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgUpstreamError)

		default:
			h.logger.Error("POST /businesses/{id}/calendar/webhook - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /businesses/{id}/calendar/webhook - Channel registered: business_id=%d, channel=%s",
		businessID, channel.ChannelID)
	handlers.RespondJSON(w, http.StatusCreated, ChannelResponse{
		ChannelID:  channel.ChannelID,
		ResourceID: channel.ResourceID,
		Expiration: channel.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
