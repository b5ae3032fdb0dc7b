package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/queue"
	"github.com/epinapi/epin-store/internal/repository"
	"github.com/epinapi/epin-store/internal/service"
)

// OrderHandler covers purchase placement and order administration.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Epins  *repository.EpinRepo
	Users  *repository.UserRepo
	Audit  AuditLog
}

func NewOrderHandler(o *repository.OrderRepo, e *repository.EpinRepo, u *repository.UserRepo, a AuditLog) *OrderHandler {
	return &OrderHandler{Orders: o, Epins: e, Users: u, Audit: a}
}

type createOrderReq struct {
	EpinID uint64 `json:"epinId"`
}

type updateOrderStatusReq struct {
	Status string `json:"status"`
}

type orderResp struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"userId"`
	EpinID     uint64    `json:"epinId"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"totalPrice"`
	OrderDate  time.Time `json:"orderDate"`
}

func toOrderResp(o model.Order) orderResp {
	return orderResp{
		ID: o.ID, UserID: o.UserID, EpinID: o.EpinID,
		Status: o.Status.String(), TotalPrice: o.TotalPrice, OrderDate: o.OrderDate,
	}
}

// Create buys a pin for the authenticated caller. The purchase runs as a
// single transaction in the repository; on success a fulfillment event is
// published best-effort, and the buyer receives the code immediately.
func (h *OrderHandler) Create(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req createOrderReq
	if err := c.Bind(&req); err != nil || req.EpinID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "epinId is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.Place(ctx, userID, req.EpinID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEpinNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "e-pin not found"})
		case errors.Is(err, repository.ErrEpinUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "e-pin is not available for purchase"})
		case errors.Is(err, repository.ErrInsufficientBalance):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "insufficient balance"})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "order failed"})
		}
	}

	// The purchase is committed; enrich and publish the fulfillment event
	// without letting broker or lookup trouble fail the response.
	event := queue.OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		EpinID:     o.EpinID,
		TotalPrice: o.TotalPrice,
		Status:     o.Status.String(),
		OrderedAt:  o.OrderDate.Format(time.RFC3339),
	}
	if u, err := h.Users.GetByID(ctx, o.UserID); err == nil {
		event.UserEmail = u.Email
	}

	var code string
	if e, err := h.Epins.GetByID(ctx, o.EpinID); err == nil {
		event.EpinName = e.Name
		code = e.Code
	}
	_ = service.PublishOrderCreated(ctx, event)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "order placed",
		"order":   toOrderResp(o),
		"code":    code,
	})
}

// List returns orders. Admins see everyone's and may filter by status and
// date range; regular users only ever see their own.
func (h *OrderHandler) List(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	role, _ := middleware.CurrentRole(c)

	var f repository.OrderFilter
	if role == model.RoleAdmin {
		if v := c.QueryParam("userId"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userId"})
			}
			f.UserID = id
		}
	} else {
		f.UserID = userID
	}
	if v := c.QueryParam("status"); v != "" {
		st, ok := model.ParseOrderStatus(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
		}
		f.Status = st.String()
	}
	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid startDate, expected YYYY-MM-DD"})
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid endDate, expected YYYY-MM-DD"})
		}
		// Inclusive through the end of the named day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one order. Owners and admins only.
func (h *OrderHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	role, _ := middleware.CurrentRole(c)
	if role != model.RoleAdmin && o.UserID != middleware.CurrentUserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "you may only view your own orders"})
	}
	return c.JSON(http.StatusOK, toOrderResp(o))
}

// UpdateStatus moves an order to a new state and records the action in the
// audit trail. Admin only.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid order id"})
	}
	var req updateOrderStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	status, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if err := h.Orders.UpdateStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	o.Status = status
	h.Audit.Log(ctx, middleware.CurrentUserID(c), "order status changed to "+status.String(), c.Path())

	return c.JSON(http.StatusOK, echo.Map{"message": "order status updated", "order": toOrderResp(o)})
}
