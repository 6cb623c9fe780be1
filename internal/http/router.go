// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"catering/internal/http/handlers"
	"catering/internal/http/middleware"
)

type RouterDeps struct {
	Orders    handlers.OrderService
	Menu      handlers.MenuService
	Webhooks  handlers.WebhookService
	UberToken string
	Log       *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Log), middleware.Recovery(deps.Log))

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	r.POST("/api/orders", orderHandler.Create)
	r.GET("/api/orders", orderHandler.List)
	r.GET("/api/orders/:id", orderHandler.Get)

	menuHandler := handlers.NewMenuHandler(deps.Menu)
	r.GET("/api/dishes", menuHandler.Dishes)
	r.POST("/api/dishes", menuHandler.CreateDish)

	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, deps.UberToken, deps.Log)
	r.POST("/webhooks/kfc", webhookHandler.Cooking)
	r.POST("/webhooks/uber/:token", webhookHandler.Delivery)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
