package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// OfferHandler обслуживает маршруты индивидуальных предложений.
type OfferHandler struct {
	offers *service.OfferService
}

// NewOfferHandler создаёт новый хэндлер.
func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// SendOffer обрабатывает POST /api/chats/:id/offers.
func (h *OfferHandler) SendOffer(c *gin.Context) {
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

	var req dto.SendOfferRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	msg, err := h.offers.SendOffer(c.Request.Context(), userID, chatID, service.SendOfferInput{
		WorkType:    req.WorkType,
		Subject:     req.Subject,
		Description: req.Description,
		Cost:        req.Cost,
		DeadlineAt:  req.DeadlineAt,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// AcceptOffer обрабатывает POST /api/offers/:messageId/accept.
// Успешный ответ содержит созданный по условиям предложения заказ.
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
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

	order, err := h.offers.AcceptOffer(c.Request.Context(), userID, messageID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// RejectOffer обрабатывает POST /api/offers/:messageId/reject.
func (h *OfferHandler) RejectOffer(c *gin.Context) {
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

	offer, err := h.offers.RejectOffer(c.Request.Context(), userID, messageID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
