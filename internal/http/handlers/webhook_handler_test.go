// README: Webhook endpoint tests with a stub fulfillment service.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httptransport "catering/internal/http"
	"catering/internal/modules/fulfillment"
	"catering/internal/types"
)

const testUberToken = "secret-token"

type stubWebhookService struct {
	cookingIDs  []string
	deliveryIDs []string
	err         error
}

func (s *stubWebhookService) HandleCookingWebhook(_ context.Context, externalID string) error {
	s.cookingIDs = append(s.cookingIDs, externalID)
	return s.err
}

func (s *stubWebhookService) HandleDeliveryWebhook(_ context.Context, externalID, _ string, _ *types.Point) error {
	s.deliveryIDs = append(s.deliveryIDs, externalID)
	return s.err
}

func buildWebhookRouter(svc *stubWebhookService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return httptransport.NewRouter(httptransport.RouterDeps{
		Webhooks:  svc,
		UberToken: testUberToken,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCookingWebhookOK(t *testing.T) {
	svc := &stubWebhookService{}
	r := buildWebhookRouter(svc)

	w := postJSON(t, r, "/webhooks/kfc", map[string]string{"id": "k-1", "status": "finished"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if len(svc.cookingIDs) != 1 || svc.cookingIDs[0] != "k-1" {
		t.Fatalf("service saw %v", svc.cookingIDs)
	}
}

func TestCookingWebhookUnknownOrderStillAccepted(t *testing.T) {
	svc := &stubWebhookService{err: fmt.Errorf("%w: cooking order %q", fulfillment.ErrUnknownExternalID, "k-404")}
	r := buildWebhookRouter(svc)

	w := postJSON(t, r, "/webhooks/kfc", map[string]string{"id": "k-404"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown order, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ignored" {
		t.Fatalf("expected ignored, got %q", resp["status"])
	}
}

func TestCookingWebhookBadPayload(t *testing.T) {
	r := buildWebhookRouter(&stubWebhookService{})

	w := postJSON(t, r, "/webhooks/kfc", map[string]string{"status": "finished"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", w.Code)
	}
}

func TestDeliveryWebhookTokenGuard(t *testing.T) {
	svc := &stubWebhookService{}
	r := buildWebhookRouter(svc)

	w := postJSON(t, r, "/webhooks/uber/wrong-token", map[string]any{"id": "drv-1", "status": "delivered"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for bad token, got %d", w.Code)
	}
	if len(svc.deliveryIDs) != 0 {
		t.Fatal("service must not be called with a bad token")
	}
}

func TestDeliveryWebhookOK(t *testing.T) {
	svc := &stubWebhookService{}
	r := buildWebhookRouter(svc)

	w := postJSON(t, r, "/webhooks/uber/"+testUberToken, map[string]any{
		"id":       "drv-1",
		"status":   "delivered",
		"location": []float64{50.45, 30.52},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if len(svc.deliveryIDs) != 1 || svc.deliveryIDs[0] != "drv-1" {
		t.Fatalf("service saw %v", svc.deliveryIDs)
	}
}
