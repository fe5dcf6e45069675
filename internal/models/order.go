package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewGraceDefault дополнительное время на проверку работы после дедлайна,
// пока заказ находится в статусе review. Даёт исполнителю возможность доказать
// факт сдачи при спорах.
const ReviewGraceDefault = 5 * 24 * time.Hour

// Order описывает заказ — оплачиваемую единицу работы между студентом и экспертом.
type Order struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	ExpertID    uuid.UUID `db:"expert_id" json:"expert_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Subject     string    `db:"subject" json:"subject"`
	WorkType    string    `db:"work_type" json:"work_type"`
	Budget      float64   `db:"budget" json:"budget"`
	Status      string    `db:"status" json:"status"`
	DeadlineAt  time.Time `db:"deadline_at" json:"deadline_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Overdue вычисляется при чтении, в базе не хранится.
	Overdue bool `db:"-" json:"is_overdue"`
}

// EffectiveDeadline возвращает дедлайн с учётом льготного периода:
// в статусе review к дедлайну прибавляется ReviewGraceDefault.
func (o *Order) EffectiveDeadline() time.Time {
	if o.Status == OrderStatusReview {
		return o.DeadlineAt.Add(ReviewGraceDefault)
	}
	return o.DeadlineAt
}

// IsOverdue сообщает, просрочен ли заказ: дедлайн прошёл, а работа всё ещё
// в активном статусе (in_progress или revision).
func (o *Order) IsOverdue(now time.Time) bool {
	if o.Status != OrderStatusInProgress && o.Status != OrderStatusRevision {
		return false
	}
	return now.After(o.EffectiveDeadline())
}

// IsTerminal сообщает, находится ли заказ в терминальном статусе.
func (o *Order) IsTerminal() bool {
	_, ok := TerminalOrderStatuses[o.Status]
	return ok
}

// IsParticipant проверяет, является ли пользователь стороной заказа.
func (o *Order) IsParticipant(userID uuid.UUID) bool {
	return o.ClientID == userID || o.ExpertID == userID
}
