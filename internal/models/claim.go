package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim описывает претензию — структурированное обращение участника в службу
// поддержки. Неизменяема после создания; решение по претензии принимается вне
// этой подсистемы.
type Claim struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	InitiatorID    uuid.UUID  `db:"initiator_id" json:"initiator_id"`
	OrderID        *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Category       string     `db:"category" json:"category"`
	OrderRelevance *string    `db:"order_relevance" json:"order_relevance,omitempty"`
	RefundType     *string    `db:"refund_type" json:"refund_type,omitempty"`
	Subject        string     `db:"subject" json:"subject"`
	Description    string     `db:"description" json:"description"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	// AttachmentIDs — идентификаторы прикреплённых медиафайлов.
	AttachmentIDs []uuid.UUID `json:"attachment_ids,omitempty"`
}

// MediaFile описывает файл во внешнем файловом хранилище.
type MediaFile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FilePath  string     `db:"file_path" json:"file_path"`
	FileName  string     `db:"file_name" json:"file_name"`
	FileType  string     `db:"file_type" json:"file_type"`
	FileSize  int64      `db:"file_size" json:"file_size"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
