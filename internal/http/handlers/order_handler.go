// README: Order handlers for create/get/list.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/order"
)

type OrderService interface {
	Create(ctx context.Context, cmd order.CreateCommand) (*order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
}

type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type orderItemReq struct {
	Dish     int64 `json:"dish"`
	Quantity int   `json:"quantity"`
}

type createOrderReq struct {
	Items            []orderItemReq `json:"items"`
	Eta              string         `json:"eta"`
	DeliveryProvider string         `json:"delivery_provider"`
	UserID           int64          `json:"user_id"`
}

type orderItemView struct {
	Dish     int64 `json:"dish"`
	Quantity int   `json:"quantity"`
}

type orderView struct {
	ID       int64           `json:"id"`
	Status   order.Status    `json:"status"`
	Items    []orderItemView `json:"items"`
	Eta      string          `json:"eta"`
	Total    int64           `json:"total"`
	Provider string          `json:"delivery_provider"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	eta, err := time.Parse("2006-01-02", req.Eta)
	if err != nil {
		writeError(c, http.StatusBadRequest, "eta must be a YYYY-MM-DD date")
		return
	}
	if req.DeliveryProvider == "" {
		req.DeliveryProvider = string(order.ProviderUklon)
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{DishID: item.Dish, Quantity: item.Quantity}
	}

	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		UserID:           req.UserID,
		Items:            items,
		Eta:              eta,
		DeliveryProvider: order.DeliveryProvider(req.DeliveryProvider),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, viewOrder(o))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, viewOrder(o))
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	views := make([]orderView, len(orders))
	for i, o := range orders {
		views[i] = viewOrder(o)
	}
	writeJSON(c, http.StatusOK, views)
}

func viewOrder(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemView{Dish: item.DishID, Quantity: item.Quantity}
	}
	return orderView{
		ID:       o.ID,
		Status:   o.Status,
		Items:    items,
		Eta:      o.Eta.Format("2006-01-02"),
		Total:    o.Total.Amount,
		Provider: string(o.DeliveryProvider),
	}
}
