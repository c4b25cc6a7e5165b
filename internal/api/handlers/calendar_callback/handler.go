package calendar_callback

import (
	"net/http"
	"strconv"
)

type Handler struct {
	service CalendarSyncService
	logger  Logger

	// Адрес страницы настроек, куда уходит редирект после OAuth
	settingsURL string
}

func NewHandler(service CalendarSyncService, settingsURL string, logger Logger) *Handler {
	return &Handler{
		service:     service,
		logger:      logger,
		settingsURL: settingsURL,
	}
}

// Handle GET /api/v1/calendar/oauth/callback?code=&state=
// state несет ID бизнеса, заданный на шаге инициации
// В обоих исходах пользователь редиректится на страницу настроек:
// провайдер календаря не должен показывать пользователю JSON с ошибкой
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	businessID, err := strconv.ParseInt(state, 10, 64)
	if err != nil || code == "" {
		h.logger.Warn("GET /calendar/oauth/callback - Invalid callback params: state=%q, err=%v", state, err)
		http.Redirect(w, r, h.settingsURL+"?calendar=error", http.StatusFound)
		return
	}

	if err := h.service.HandleAuthCallback(r.Context(), businessID, code); err != nil {
		h.logger.Error("GET /calendar/oauth/callback - Auth callback failed: business_id=%d, error=%v",
			businessID, err)
		http.Redirect(w, r, h.settingsURL+"?calendar=error", http.StatusFound)
		return
	}

	h.logger.Info("GET /calendar/oauth/callback - Calendar connected: business_id=%d", businessID)
	http.Redirect(w, r, h.settingsURL+"?calendar=connected", http.StatusFound)
}
