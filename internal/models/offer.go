package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferTTLDefault окно, в течение которого индивидуальное предложение можно
// принять или отклонить. После истечения любое действие над предложением
// отклоняется как конфликт.
const OfferTTLDefault = 48 * time.Hour

// OfferData — полезная нагрузка сообщения типа offer: индивидуальное
// предложение услуги от эксперта студенту. Статус меняется не более одного
// раза: new -> accepted или new -> rejected.
type OfferData struct {
	MessageID   uuid.UUID  `db:"message_id" json:"message_id"`
	WorkType    string     `db:"work_type" json:"work_type"`
	Subject     string     `db:"subject" json:"subject"`
	Description string     `db:"description" json:"description"`
	Cost        float64    `db:"cost" json:"cost"`
	DeadlineAt  time.Time  `db:"deadline_at" json:"deadline_at"`
	Status      string     `db:"status" json:"status"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	// Expired вычисляется при чтении тем же окном, которым пользуется
	// движок предложений, в базе не хранится.
	Expired bool `db:"-" json:"is_expired"`
}

// IsExpired сообщает, истекло ли окно действия предложения.
// Чистая функция от времени создания, безопасна для вычисления на каждом чтении.
func (o *OfferData) IsExpired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = OfferTTLDefault
	}
	return now.After(o.CreatedAt.Add(ttl))
}

// WorkOfferData — полезная нагрузка сообщения типа work_offer: предложение
// готовой работы. После принятия проходит собственный жизненный цикл сдачи:
// pending -> awaiting_upload -> delivered -> accepted | rejected.
// DeliveryStatus имеет смысл только при Status = accepted.
type WorkOfferData struct {
	MessageID          uuid.UUID  `db:"message_id" json:"message_id"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	Cost               float64    `db:"cost" json:"cost"`
	WorkID             *uuid.UUID `db:"work_id" json:"work_id,omitempty"`
	Status             string     `db:"status" json:"status"`
	DeliveryStatus     string     `db:"delivery_status" json:"delivery_status"`
	DeliveredMessageID *uuid.UUID `db:"delivered_message_id" json:"delivered_message_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}
