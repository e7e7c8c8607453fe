package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkuznec/pizza_orders/internal/handlers"
	authmw "github.com/mkuznec/pizza_orders/internal/middleware/auth"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	OrderHandler  *handlers.OrderHandler
	SearchHandler *handlers.SearchHandler
	AuthMW        *authmw.SimpleAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/signup", d.AuthHandler.SignUp)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)

	orders := e.Group("/orders", d.AuthMW.RequireAuth)
	orders.GET("/orders", d.OrderHandler.ListOrders)
	orders.POST("/orders", d.OrderHandler.CreateOrder)
	orders.GET("/order/:order_id", d.OrderHandler.GetOrder)
	orders.PUT("/order/:order_id", d.OrderHandler.UpdateOrder)
	orders.DELETE("/order/:order_id", d.OrderHandler.DeleteOrder)
	orders.GET("/user/:user_id/order/:order_id", d.OrderHandler.GetUserOrder)
	orders.GET("/user/:user_id/orders", d.OrderHandler.ListUserOrders)
	orders.PATCH("/order/status/:order_id", d.OrderHandler.UpdateOrderStatus)
	orders.GET("/search", d.SearchHandler.Search)
}
