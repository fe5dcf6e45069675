package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/goroutine"
	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
)

// WSNotifier доставляет событие онлайн-пользователю через websocket.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// NotificationRepository — хранилище уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService сохраняет уведомления и рассылает их по websocket.
type NotificationService struct {
	repo     NotificationRepository
	notifier WSNotifier
}

func NewNotificationService(repo NotificationRepository, notifier WSNotifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// Notify сохраняет уведомление и отправляет его получателю, если тот онлайн.
// Ошибка доставки по websocket не считается ошибкой операции.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification service: сериализация payload: %w", err)
	}

	n := &models.Notification{
		UserID:  userID,
		Event:   event,
		Payload: raw,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("notification service: сохранение уведомления: %w", err)
	}

	if s.notifier != nil {
		goroutine.SafeGo(func() {
			if err := s.notifier.BroadcastToUser(userID, event, payload); err != nil {
				logger.WithComponent("notification").WithError(err).
					Debug("не удалось доставить событие по websocket")
			}
		})
	}

	return nil
}

// List возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("notification service: список уведомлений: %w", err)
	}
	return items, nil
}

// MarkAsRead помечает уведомление прочитанным.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return fmt.Errorf("notification service: отметка уведомления: %w", err)
	}
	return nil
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notification service: подсчёт непрочитанных: %w", err)
	}
	return n, nil
}
