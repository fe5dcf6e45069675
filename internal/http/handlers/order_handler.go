package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// OrderHandler обслуживает маршруты жизненного цикла заказа.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListMyOrders обрабатывает GET /api/orders/my.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orders, err := h.orders.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID, role, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Submit обрабатывает POST /api/orders/:id/submit: исполнитель сдаёт работу
// на проверку, при желании прикладывая файл.
func (h *OrderHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	var req dto.SubmitOrderRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			_ = c.Error(apperror.Validation(err.Error()))
			return
		}
	}

	order, err := h.orders.Submit(c.Request.Context(), userID, orderID, req.MediaID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Approve обрабатывает POST /api/orders/:id/approve.
func (h *OrderHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	var req dto.ApproveOrderRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			_ = c.Error(apperror.Validation(err.Error()))
			return
		}
	}

	order, err := h.orders.Approve(c.Request.Context(), userID, orderID, req.Rating, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RequestRevision обрабатывает POST /api/orders/:id/revision.
func (h *OrderHandler) RequestRevision(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	order, err := h.orders.RequestRevision(c.Request.Context(), userID, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ExtendDeadline обрабатывает POST /api/orders/:id/deadline.
func (h *OrderHandler) ExtendDeadline(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	var req dto.ExtendDeadlineRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	order, err := h.orders.ExtendDeadline(c.Request.Context(), userID, orderID, req.DeadlineAt)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOverdue обрабатывает POST /api/orders/:id/cancel-overdue.
func (h *OrderHandler) CancelOverdue(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	order, err := h.orders.CancelOverdue(c.Request.Context(), userID, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}
