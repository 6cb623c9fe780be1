// README: HTTP adapters for the delivery providers (Uklon, Uber).
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"catering/internal/types"
)

type DeliveryClient struct {
	name    string
	baseURL string
	http    *http.Client
}

func NewUklon(baseURL string) *DeliveryClient {
	return &DeliveryClient{name: "uklon", baseURL: baseURL, http: newHTTPClient()}
}

func NewUber(baseURL string) *DeliveryClient {
	return &DeliveryClient{name: "uber", baseURL: baseURL, http: newHTTPClient()}
}

type deliveryResponse struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Location *types.Point `json:"location"`
}

func (c *DeliveryClient) CreateOrder(ctx context.Context, req DeliveryRequest) (Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drivers/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp deliveryResponse
	if err := doJSON(c.http, c.name, httpReq, &resp); err != nil {
		return Order{}, err
	}
	return Order{ID: resp.ID, Status: resp.Status, Location: resp.Location}, nil
}

func (c *DeliveryClient) GetOrder(ctx context.Context, externalID string) (Order, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/drivers/orders/"+externalID, nil)
	if err != nil {
		return Order{}, err
	}

	var resp deliveryResponse
	if err := doJSON(c.http, c.name, httpReq, &resp); err != nil {
		return Order{}, err
	}
	if resp.ID == "" {
		resp.ID = externalID
	}
	return Order{ID: resp.ID, Status: resp.Status, Location: resp.Location}, nil
}
