package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Chat описывает диалог ровно между двумя участниками: студентом и экспертом
// либо пользователем и службой поддержки.
type Chat struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ClientID     uuid.UUID `db:"client_id" json:"client_id"`
	ExpertID     uuid.UUID `db:"expert_id" json:"expert_id"`
	IsSupport    bool      `db:"is_support" json:"is_support"`
	ContextTitle *string   `db:"context_title" json:"context_title,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	// OrderIDs — упорядоченный список заказов, привязанных к чату за всю его
	// историю. Последний элемент считается актуальным заказом.
	OrderIDs []uuid.UUID `json:"order_ids,omitempty"`
	// LastMessage загружается отдельно для списков чатов.
	LastMessage *Message `json:"last_message,omitempty"`
}

// IsParticipant проверяет, является ли пользователь участником чата.
func (c *Chat) IsParticipant(userID uuid.UUID) bool {
	return c.ClientID == userID || c.ExpertID == userID
}

// Peer возвращает второго участника чата.
func (c *Chat) Peer(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.ExpertID
	}
	return c.ClientID
}

// Message описывает сообщение в чате. Помимо обычного текста сообщение может
// нести типизированный коммерческий объект: предложение услуги, предложение
// готовой работы или файл. Тип сообщения определяет, какое из полей payload
// заполнено — ровно одно, остальные nil.
type Message struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ChatID    uuid.UUID  `db:"chat_id" json:"chat_id"`
	SenderID  uuid.UUID  `db:"sender_id" json:"sender_id"`
	Type      string     `db:"type" json:"type"`
	Content   string     `db:"content" json:"content"`
	MediaID   *uuid.UUID `db:"media_id" json:"media_id,omitempty"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`

	Offer     *OfferData     `json:"offer,omitempty"`
	WorkOffer *WorkOfferData `json:"work_offer,omitempty"`

	// IsMine вычисляется для конкретного читателя, в базе не хранится.
	IsMine bool `db:"-" json:"is_mine"`
}

// Notification описывает событие, отправленное пользователю. Payload хранит
// снимок объекта события в том виде, в каком он ушёл бы по websocket.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Event     string          `db:"event" json:"event"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
