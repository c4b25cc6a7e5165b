package webhook_notification

import (
	"errors"
	"net/http"

	"github.com/lobba/scheduling-service/internal/api/handlers"
	"github.com/lobba/scheduling-service/internal/service/webhookmgr"
)

const (
	headerChannelID     = "X-Goog-Channel-ID"
	headerResourceID    = "X-Goog-Resource-ID"
	headerResourceState = "X-Goog-Resource-State"

	msgMissingChannelID = "не указан ID канала"
	msgUnknownChannel   = "канал уведомлений не найден"
)

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

// Handle POST /api/v1/calendar/notifications
// Провайдер повторяет доставку при не-2xx ответе, поэтому все исходы
// кроме неизвестного канала подтверждаются статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	channelID := r.Header.Get(headerChannelID)
	resourceID := r.Header.Get(headerResourceID)
	resourceState := r.Header.Get(headerResourceState)

	if channelID == "" {
		h.logger.Warn("POST /calendar/notifications - Missing channel ID header")
		handlers.RespondBadRequest(w, msgMissingChannelID)
		return
	}

	if err := h.service.HandleNotification(r.Context(), channelID, resourceID, resourceState); err != nil {
		switch {
		case errors.Is(err, webhookmgr.ErrChannelNotFound):
			h.logger.Warn("POST /calendar/notifications - Unknown channel: channel=%s", channelID)
			handlers.RespondNotFound(w, msgUnknownChannel)

		default:
			h.logger.Error("POST /calendar/notifications - Failed: channel=%s, error=%v", channelID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /calendar/notifications - Acknowledged: channel=%s, state=%s", channelID, resourceState)
	w.WriteHeader(http.StatusOK)
}
