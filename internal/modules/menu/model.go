// README: Restaurants and dishes (read-mostly catalog).
package menu

import (
	"catering/internal/modules/order"
	"catering/internal/types"
)

type Restaurant struct {
	ID       int64
	Name     string
	Address  string
	Provider order.CookingProvider
	Dishes   []Dish
}

type Dish struct {
	ID           int64
	RestaurantID int64
	Name         string
	Price        types.Money
}
