package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateChatRequest — запрос на поиск или создание чата с собеседником.
type CreateChatRequest struct {
	PeerID       uuid.UUID `json:"peer_id" binding:"required"`
	ContextTitle *string   `json:"context_title,omitempty"`
}

// SendMessageRequest — запрос на отправку сообщения. Либо текст, либо
// ссылка на загруженный файл.
type SendMessageRequest struct {
	Content string     `json:"content"`
	MediaID *uuid.UUID `json:"media_id,omitempty"`
}

// SendOfferRequest — условия индивидуального предложения.
type SendOfferRequest struct {
	WorkType    string    `json:"work_type" binding:"required"`
	Subject     string    `json:"subject" binding:"required"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost" binding:"required"`
	DeadlineAt  time.Time `json:"deadline_at" binding:"required"`
}

// SendWorkOfferRequest — условия предложения готовой работы.
type SendWorkOfferRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Cost        float64    `json:"cost" binding:"required"`
	WorkID      *uuid.UUID `json:"work_id,omitempty"`
}

// AcceptDeliveryRequest — приёмка сданной работы с необязательной оценкой.
type AcceptDeliveryRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// SubmitOrderRequest — сдача заказа на проверку.
type SubmitOrderRequest struct {
	MediaID *uuid.UUID `json:"media_id,omitempty"`
}

// ApproveOrderRequest — приёмка заказа с необязательной оценкой исполнителя.
type ApproveOrderRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// ExtendDeadlineRequest — продление дедлайна просроченного заказа.
type ExtendDeadlineRequest struct {
	DeadlineAt time.Time `json:"deadline_at" binding:"required"`
}

// CreateClaimRequest — новая претензия.
type CreateClaimRequest struct {
	OrderID        *uuid.UUID  `json:"order_id,omitempty"`
	Category       string      `json:"category" binding:"required"`
	OrderRelevance *string     `json:"order_relevance,omitempty"`
	RefundType     *string     `json:"refund_type,omitempty"`
	Subject        string      `json:"subject" binding:"required"`
	Description    string      `json:"description" binding:"required"`
	AttachmentIDs  []uuid.UUID `json:"attachment_ids,omitempty"`
}
