// README: HTTP adapters for the cooking providers (Silpo, KFC).
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CookingClient talks to one cooking provider's order API. Both
// providers expose the same paths; only the host differs.
type CookingClient struct {
	name    string
	baseURL string
	http    *http.Client
}

func NewSilpo(baseURL string) *CookingClient {
	return &CookingClient{name: "silpo", baseURL: baseURL, http: newHTTPClient()}
}

func NewKFC(baseURL string) *CookingClient {
	return &CookingClient{name: "kfc", baseURL: baseURL, http: newHTTPClient()}
}

type cookingResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *CookingClient) CreateOrder(ctx context.Context, req CookingRequest) (Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp cookingResponse
	if err := doJSON(c.http, c.name, httpReq, &resp); err != nil {
		return Order{}, err
	}
	return Order{ID: resp.ID, Status: resp.Status}, nil
}

func (c *CookingClient) GetOrder(ctx context.Context, externalID string) (Order, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders/"+externalID, nil)
	if err != nil {
		return Order{}, err
	}

	var resp cookingResponse
	if err := doJSON(c.http, c.name, httpReq, &resp); err != nil {
		return Order{}, err
	}
	if resp.ID == "" {
		resp.ID = externalID
	}
	return Order{ID: resp.ID, Status: resp.Status}, nil
}

// doJSON executes the request and maps transport/5xx failures to
// ErrUnavailable and 4xx to ErrRejected.
func doJSON(client *http.Client, provider string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, provider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s responded %d", ErrUnavailable, provider, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s responded %d", ErrRejected, provider, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, provider, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", provider, err)
	}
	return nil
}
