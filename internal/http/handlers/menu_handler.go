// README: Catalog handlers: restaurants with dishes, dish creation.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/modules/menu"
	"catering/internal/types"
)

type MenuService interface {
	Restaurants(ctx context.Context) ([]menu.Restaurant, error)
	CreateDish(ctx context.Context, d *menu.Dish) error
}

type MenuHandler struct {
	menu MenuService
}

func NewMenuHandler(svc MenuService) *MenuHandler {
	return &MenuHandler{menu: svc}
}

type dishView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type restaurantView struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Dishes  []dishView `json:"dishes"`
}

func (h *MenuHandler) Dishes(c *gin.Context) {
	restaurants, err := h.menu.Restaurants(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	views := make([]restaurantView, len(restaurants))
	for i, r := range restaurants {
		view := restaurantView{ID: r.ID, Name: r.Name, Address: r.Address, Dishes: []dishView{}}
		for _, d := range r.Dishes {
			view.Dishes = append(view.Dishes, dishView{ID: d.ID, Name: d.Name, Price: d.Price.Amount})
		}
		views[i] = view
	}
	writeJSON(c, http.StatusOK, views)
}

type createDishReq struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Restaurant int64  `json:"restaurant"`
}

func (h *MenuHandler) CreateDish(c *gin.Context) {
	var req createDishReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Price < 1 {
		writeError(c, http.StatusBadRequest, "name and a positive price are required")
		return
	}

	dish := &menu.Dish{
		RestaurantID: req.Restaurant,
		Name:         req.Name,
		Price:        types.Hryvnia(req.Price),
	}
	if err := h.menu.CreateDish(c.Request.Context(), dish); err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, dishView{ID: dish.ID, Name: dish.Name, Price: dish.Price.Amount})
}
