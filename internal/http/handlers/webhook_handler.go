// README: Inbound provider webhooks for cooking and delivery callbacks.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/fulfillment"
	"catering/internal/types"
)

type WebhookService interface {
	HandleCookingWebhook(ctx context.Context, externalID string) error
	HandleDeliveryWebhook(ctx context.Context, externalID, statusToken string, location *types.Point) error
}

type WebhookHandler struct {
	fulfillment WebhookService
	uberToken   string
	log         *slog.Logger
}

func NewWebhookHandler(svc WebhookService, uberToken string, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{fulfillment: svc, uberToken: uberToken, log: log}
}

type cookingWebhookReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Cooking handles the KFC callback. The payload names only the external
// order; the event itself means the leg is cooked.
func (h *WebhookHandler) Cooking(c *gin.Context) {
	var req cookingWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	err := h.fulfillment.HandleCookingWebhook(c.Request.Context(), req.ID)
	if errors.Is(err, fulfillment.ErrUnknownExternalID) {
		// Still 2xx: retry storms from the provider would not make the
		// mapping appear.
		h.log.Warn("cooking webhook for unknown order", "external_id", req.ID)
		writeJSON(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.log.Error("cooking webhook failed", "external_id", req.ID, "err", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

type deliveryWebhookReq struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Location *types.Point `json:"location"`
}

// Delivery handles the Uber callback, guarded by the secret path token.
func (h *WebhookHandler) Delivery(c *gin.Context) {
	if c.Param("token") != h.uberToken {
		writeError(c, http.StatusNotFound, "not found")
		return
	}

	var req deliveryWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Status == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	err := h.fulfillment.HandleDeliveryWebhook(c.Request.Context(), req.ID, req.Status, req.Location)
	if errors.Is(err, fulfillment.ErrUnknownExternalID) {
		h.log.Warn("delivery webhook for unknown order", "external_id", req.ID)
		writeJSON(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.log.Error("delivery webhook failed", "external_id", req.ID, "err", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
