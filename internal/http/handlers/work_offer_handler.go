package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// WorkOfferHandler обслуживает маршруты предложений готовых работ и их сдачи.
type WorkOfferHandler struct {
	workOffers *service.WorkOfferService
}

// NewWorkOfferHandler создаёт новый хэндлер.
func NewWorkOfferHandler(workOffers *service.WorkOfferService) *WorkOfferHandler {
	return &WorkOfferHandler{workOffers: workOffers}
}

// SendWorkOffer обрабатывает POST /api/chats/:id/work-offers.
func (h *WorkOfferHandler) SendWorkOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	chatID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	var req dto.SendWorkOfferRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	msg, err := h.workOffers.SendWorkOffer(c.Request.Context(), userID, chatID, service.SendWorkOfferInput{
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		WorkID:      req.WorkID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// Accept обрабатывает POST /api/work-offers/:messageId/accept.
func (h *WorkOfferHandler) Accept(c *gin.Context) {
	h.transition(c, h.workOffers.Accept)
}

// Reject обрабатывает POST /api/work-offers/:messageId/reject.
func (h *WorkOfferHandler) Reject(c *gin.Context) {
	h.transition(c, h.workOffers.Reject)
}

// MarkReady обрабатывает POST /api/work-offers/:messageId/ready.
func (h *WorkOfferHandler) MarkReady(c *gin.Context) {
	h.transition(c, h.workOffers.MarkReady)
}

// RejectDelivery обрабатывает POST /api/work-offers/:messageId/delivery/reject.
func (h *WorkOfferHandler) RejectDelivery(c *gin.Context) {
	h.transition(c, h.workOffers.RejectDelivery)
}

// Deliver обрабатывает POST /api/work-offers/:messageId/deliver: multipart
// загрузка файла работы.
func (h *WorkOfferHandler) Deliver(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	messageID, err := common.ParseUUIDParam(c, "messageId")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperror.Validation("файл обязателен"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	offer, err := h.workOffers.Deliver(c.Request.Context(), userID, messageID, fileHeader.Filename, f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// AcceptDelivery обрабатывает POST /api/work-offers/:messageId/delivery/accept.
func (h *WorkOfferHandler) AcceptDelivery(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	messageID, err := common.ParseUUIDParam(c, "messageId")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	var req dto.AcceptDeliveryRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			_ = c.Error(apperror.Validation(err.Error()))
			return
		}
	}

	offer, err := h.workOffers.AcceptDelivery(c.Request.Context(), userID, messageID, req.Rating, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// transition выполняет однотипный переход по идентификатору сообщения.
func (h *WorkOfferHandler) transition(c *gin.Context, fn func(ctx context.Context, actorID, messageID uuid.UUID) (*models.WorkOfferData, error)) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	messageID, err := common.ParseUUIDParam(c, "messageId")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	offer, err := fn(c.Request.Context(), userID, messageID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
