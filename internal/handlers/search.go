package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/mkuznec/pizza_orders/internal/service/search"
	"github.com/mkuznec/pizza_orders/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client, index string) *SearchHandler {
	return &SearchHandler{ES: es, Index: index}
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, orders, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "orders": orders})
}
