package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RatingRecorder передаёт оценку исполнителя во внешнюю подсистему рейтингов.
// Хранение и агрегация оценок не входят в зону ответственности чата.
type RatingRecorder interface {
	RecordRating(ctx context.Context, orderID *uuid.UUID, raterID, ratedID uuid.UUID, rating int, comment *string) error
}

// RatingEvent — полезная нагрузка события об оценке.
type RatingEvent struct {
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	RaterID   uuid.UUID  `json:"rater_id"`
	RatedID   uuid.UUID  `json:"rated_id"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationRatingRecorder передаёт оценку через подсистему уведомлений:
// оценённый пользователь получает событие, внешний сервис рейтингов читает тот
// же поток.
type NotificationRatingRecorder struct {
	notifier Notifier
	now      func() time.Time
}

func NewNotificationRatingRecorder(notifier Notifier) *NotificationRatingRecorder {
	return &NotificationRatingRecorder{notifier: notifier, now: time.Now}
}

// RecordRating отправляет событие rating.created оценённому пользователю.
func (r *NotificationRatingRecorder) RecordRating(ctx context.Context, orderID *uuid.UUID, raterID, ratedID uuid.UUID, rating int, comment *string) error {
	event := RatingEvent{
		OrderID:   orderID,
		RaterID:   raterID,
		RatedID:   ratedID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: r.now(),
	}
	if err := r.notifier.Notify(ctx, ratedID, "rating.created", event); err != nil {
		return fmt.Errorf("rating recorder: %w", err)
	}
	return nil
}
