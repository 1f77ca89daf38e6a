package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"gwi.com/verification-bot/internal/core"
	"gwi.com/verification-bot/internal/telegram"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type APIHandler struct {
	events chan<- core.Inbound
	secret string
	logger *zap.Logger
}

// NewAPIHandler builds the HTTP handlers. With a nil events channel only the
// health endpoint is served.
func NewAPIHandler(events chan<- core.Inbound, secret string, logger *zap.Logger) *APIHandler {
	return &APIHandler{events: events, secret: secret, logger: logger.Named("http")}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *APIHandler) WebhookSecretMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.secret != "" {
			got := r.Header.Get(SecretTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
				h.logger.Warn("webhook call with invalid secret", zap.String("remote", r.RemoteAddr))
				http.Error(w, "Invalid secret token", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *APIHandler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	update, err := telegram.DecodeUpdate(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	telegram.Forward(r.Context(), update, h.events, h.logger)
	w.WriteHeader(http.StatusOK)
}
