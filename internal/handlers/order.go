package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/mkuznec/pizza_orders/internal/logging"
	"github.com/mkuznec/pizza_orders/internal/models"
	"github.com/mkuznec/pizza_orders/internal/mykafka"
	"github.com/mkuznec/pizza_orders/internal/service"
	"github.com/mkuznec/pizza_orders/internal/service/search"
	"github.com/mkuznec/pizza_orders/internal/util"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type orderRequest struct {
	Size     string `json:"size"`
	Flavour  string `json:"flavour"`
	Quantity int    `json:"quantity"`
}

func username(c echo.Context) (string, error) {
	v, ok := c.Get("username").(string)
	if !ok || v == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return v, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}

func serviceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["order_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *OrderHandler) indexOrder(c echo.Context, order *models.Order) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexOrder(ctx, h.ES, h.Index, order); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "order_id", order.ID, "error", err)
	}
}

func (h *OrderHandler) deindexOrder(c echo.Context, orderID uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteOrder(ctx, h.ES, h.Index, orderID); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete error", "order_id", orderID, "error", err)
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	orders, total, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	caller, err := username(c)
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Create(ctx, caller, req.Size, req.Flavour, req.Quantity)
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return serviceError(err)
	}

	h.publish(c, map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	h.indexOrder(c, order)

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "order_id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_update")

	id, err := parseID(c, "order_id")
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Update(ctx, id, req.Size, req.Flavour, req.Quantity)
	if err != nil {
		l.Warn("update_order_failed", "order_id", id, "error", err)
		return serviceError(err)
	}

	h.publish(c, map[string]any{
		"type":     "order_updated",
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	h.indexOrder(c, order)

	l.Info("update_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_delete")

	id, err := parseID(c, "order_id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		l.Warn("delete_order_failed", "order_id", id, "error", err)
		return serviceError(err)
	}

	h.publish(c, map[string]any{
		"type":     "order_deleted",
		"order_id": id,
	})
	h.deindexOrder(c, id)

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) GetUserOrder(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	orderID, err := parseID(c, "order_id")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetUserOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_status")

	id, err := parseID(c, "order_id")
	if err != nil {
		return err
	}

	var req struct {
		OrderStatus string `json:"order_status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.OrderStatus)
	if err != nil {
		l.Warn("update_status_failed", "order_id", id, "error", err)
		return serviceError(err)
	}

	h.publish(c, map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.OrderStatus,
	})
	h.indexOrder(c, order)

	l.Info("update_status_success", "order_id", order.ID, "order_status", order.OrderStatus)
	return c.JSON(http.StatusOK, order)
}
