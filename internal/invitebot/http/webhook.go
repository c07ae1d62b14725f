package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/bot"
	"github.com/aussiebroadwan/invitebot/pkg/httpx"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

const maxUpdateBytes = 1 << 20

type WebhookHandler struct {
	Updates bot.UpdateHandler
}

// ServeHTTP handles one update per request. Handler failures still answer
// 200, otherwise Telegram keeps redelivering the same update.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var upd telegram.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid update body",
		})
		return
	}

	if err := h.Updates.HandleUpdate(ctx, upd); err != nil {
		log.Error("failed to handle update", "update_id", upd.UpdateID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
}
