// README: Task payloads exchanged over the queue.
package queue

const (
	TaskCook    = "order.cook"
	TaskDeliver = "order.deliver"
)

type Task struct {
	Type         string `json:"type"`
	OrderID      int64  `json:"order_id"`
	RestaurantID int64  `json:"restaurant_id,omitempty"`
}
