package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// ChatHandler обслуживает маршруты чатов и сообщений.
type ChatHandler struct {
	chats *service.ChatService
}

// NewChatHandler создаёт новый хэндлер.
func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// ListMyChats обрабатывает GET /api/chats.
func (h *ChatHandler) ListMyChats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	chats, err := h.chats.ListMyChats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// CreateChat обрабатывает POST /api/chats: находит существующий чат с
// собеседником или создаёт новый.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateChatRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	chat, err := h.chats.GetOrCreateChat(c.Request.Context(), userID, req.PeerID, req.ContextTitle)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// GetChat обрабатывает GET /api/chats/:id.
func (h *ChatHandler) GetChat(c *gin.Context) {
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

	chat, err := h.chats.GetChat(c.Request.Context(), userID, chatID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// DeleteChat обрабатывает DELETE /api/chats/:id.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
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

	if err := h.chats.DeleteChat(c.Request.Context(), userID, chatID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "чат удалён"})
}

// ListMessages обрабатывает GET /api/chats/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
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

	limit, offset := common.GetPagination(c)
	messages, err := h.chats.ListMessages(c.Request.Context(), userID, chatID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage обрабатывает POST /api/chats/:id/messages: текстовое сообщение
// либо пересылка загруженного файла.
func (h *ChatHandler) SendMessage(c *gin.Context) {
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

	var req dto.SendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	if req.MediaID != nil {
		msg, err := h.chats.SendFile(c.Request.Context(), userID, chatID, *req.MediaID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, msg)
		return
	}

	msg, err := h.chats.SendText(c.Request.Context(), userID, chatID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead обрабатывает POST /api/chats/:id/read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
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

	if err := h.chats.MarkRead(c.Request.Context(), userID, chatID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "сообщения прочитаны"})
}
