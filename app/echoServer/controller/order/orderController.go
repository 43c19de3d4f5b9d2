package order

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qjiujiu/toy-readhub/model"
	ordersvc "github.com/qjiujiu/toy-readhub/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/orders
func (h *Controller) Create(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	order, err := h.Svc.Create(c.Request().Context(), ordersvc.CreateInput{
		UserID:        req.UserID,
		BookID:        req.BookID,
		WarehouseName: req.WarehouseName,
	})
	if err != nil {
		h.Log.Error("order create", "book_id", req.BookID, "warehouse", req.WarehouseName, "err", err)
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// POST /v1/orders/batch
func (h *Controller) CreateBatch(c echo.Context) error {
	var reqs []CreateOrderReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	items := make([]ordersvc.CreateInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, ordersvc.CreateInput{
			UserID:        r.UserID,
			BookID:        r.BookID,
			WarehouseName: r.WarehouseName,
		})
	}

	out, err := h.Svc.CreateBatch(c.Request().Context(), items)
	if err != nil {
		h.Log.Error("order batch create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, out)
}

// PUT /v1/orders/:order_id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	order, err := h.Svc.UpdateStatus(c.Request().Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		h.Log.Error("order status update", "order_id", orderID, "status", req.Status, "err", err)
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GET /v1/orders
func (h *Controller) List(c echo.Context) error {
	page, pageSize := paging(c)
	items, total, err := h.Svc.List(c.Request().Context(), page*pageSize, pageSize)
	if err != nil {
		h.Log.Error("order list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if items == nil {
		items = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "count": len(items), "orders": items})
}

// GET /v1/orders/oid/:order_id
func (h *Controller) GetByID(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	order, err := h.Svc.GetByID(c.Request().Context(), orderID)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GET /v1/orders/user/:student_id
func (h *Controller) ListByStudent(c echo.Context) error {
	page, pageSize := paging(c)
	orders, err := h.Svc.ListByStudent(c.Request().Context(), c.Param("student_id"), page*pageSize, pageSize)
	if err != nil {
		return h.mapErr(c, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

// GET /v1/orders/book/:isbn
func (h *Controller) ListByISBN(c echo.Context) error {
	page, pageSize := paging(c)
	orders, err := h.Svc.ListByISBN(c.Request().Context(), c.Param("isbn"), page*pageSize, pageSize)
	if err != nil {
		return h.mapErr(c, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

func (h *Controller) mapErr(c echo.Context, err error) error {
	switch ordersvc.Code(err) {
	case ordersvc.ErrInsufficientStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient stock"})
	case ordersvc.ErrOrderNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	case ordersvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case ordersvc.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case ordersvc.ErrOrderAlreadyReturned:
		return c.JSON(http.StatusConflict, echo.Map{"message": "order already returned"})
	case ordersvc.ErrInvalidStatusTransition, ordersvc.ErrInvalidStatus:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status transition"})
	default:
		h.Log.Error("order service", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func paging(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
