package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// OrderRepo — хранилище заказов, как его видит слой сервисов.
type OrderRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, to string, from ...string) (*models.Order, error)
	SubmitIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error)
	CancelOverdueIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error)
	ExtendDeadlineIf(ctx context.Context, id uuid.UUID, newDeadline, now time.Time) (*models.Order, error)
}

// OrderService управляет жизненным циклом заказа после его создания:
// сдача на проверку, приёмка, доработка, продление дедлайна, отмена
// просроченного. Каждый переход защищён предикатом по текущему статусу и
// дедлайну в самом хранилище.
type OrderService struct {
	orders   OrderRepo
	chats    ChatRepo
	media    MediaRepo
	notifier Notifier
	ratings  RatingRecorder

	now func() time.Time
}

func NewOrderService(orders OrderRepo, chats ChatRepo, media MediaRepo, notifier Notifier, ratings RatingRecorder) *OrderService {
	return &OrderService{
		orders:   orders,
		chats:    chats,
		media:    media,
		notifier: notifier,
		ratings:  ratings,
		now:      time.Now,
	}
}

// GetOrder возвращает заказ, доступен только его сторонам и поддержке.
func (s *OrderService) GetOrder(ctx context.Context, actorID uuid.UUID, actorRole string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order service: получение заказа: %w", err)
	}
	if !order.IsParticipant(actorID) && actorRole != models.RoleSupport {
		return nil, apperror.ErrForbidden
	}
	order.Overdue = order.IsOverdue(s.now())
	return order, nil
}

// ListMyOrders возвращает заказы, в которых пользователь участвует как
// заказчик или исполнитель.
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.orders.ListMyOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("order service: список заказов: %w", err)
	}
	for i := range orders {
		orders[i].Overdue = orders[i].IsOverdue(s.now())
	}
	return orders, nil
}

// Submit сдаёт работу на проверку: переход in_progress | revision -> review.
// Доступно только исполнителю и только до дедлайна; сдача после дедлайна
// отклоняется как конфликт. При переданном mediaID в чат заказа добавляется
// файловое сообщение со сданной работой.
func (s *OrderService) Submit(ctx context.Context, actorID, orderID uuid.UUID, mediaID *uuid.UUID) (*models.Order, error) {
	order, err := s.requireParty(ctx, orderID, actorID, partyExpert)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.SubmitIf(ctx, orderID, s.now())
	if err != nil {
		return nil, s.mapOrderStatusErr(err, "сдача на проверку")
	}

	if mediaID != nil {
		if err := s.attachDeliveryMessage(ctx, order, actorID, *mediaID); err != nil {
			logger.WithComponent("order").WithError(err).Warn("не удалось добавить сообщение о сдаче")
		}
	}

	s.notify(ctx, order.ClientID, "order.submitted", updated)
	return updated, nil
}

// Approve принимает работу: переход review -> completed. Доступно только
// заказчику; при желании он может оставить оценку исполнителю.
func (s *OrderService) Approve(ctx context.Context, actorID, orderID uuid.UUID, rating *int, comment *string) (*models.Order, error) {
	order, err := s.requireParty(ctx, orderID, actorID, partyClient)
	if err != nil {
		return nil, err
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperror.Validation("оценка должна быть от 1 до 5")
	}

	updated, err := s.orders.UpdateStatusIf(ctx, orderID, models.OrderStatusCompleted, models.OrderStatusReview)
	if err != nil {
		return nil, s.mapOrderStatusErr(err, "приёмка")
	}

	if rating != nil && s.ratings != nil {
		if err := s.ratings.RecordRating(ctx, &orderID, actorID, order.ExpertID, *rating, comment); err != nil {
			logger.WithComponent("order").WithError(err).Warn("не удалось передать оценку")
		}
	}

	s.notify(ctx, order.ExpertID, "order.completed", updated)
	return updated, nil
}

// RequestRevision возвращает работу на доработку: переход review -> revision.
// Доступно только заказчику.
func (s *OrderService) RequestRevision(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.requireParty(ctx, orderID, actorID, partyClient)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateStatusIf(ctx, orderID, models.OrderStatusRevision, models.OrderStatusReview)
	if err != nil {
		return nil, s.mapOrderStatusErr(err, "возврат на доработку")
	}

	s.notify(ctx, order.ExpertID, "order.revision_requested", updated)
	return updated, nil
}

// ExtendDeadline продлевает дедлайн просроченного заказа вместо его отмены.
// Доступно только заказчику; новый дедлайн должен быть строго в будущем.
func (s *OrderService) ExtendDeadline(ctx context.Context, actorID, orderID uuid.UUID, newDeadline time.Time) (*models.Order, error) {
	order, err := s.requireParty(ctx, orderID, actorID, partyClient)
	if err != nil {
		return nil, err
	}
	if !newDeadline.After(s.now()) {
		return nil, apperror.Validation("новый дедлайн должен быть в будущем")
	}

	updated, err := s.orders.ExtendDeadlineIf(ctx, orderID, newDeadline, s.now())
	if err != nil {
		return nil, s.mapOrderStatusErr(err, "продление дедлайна")
	}

	s.notify(ctx, order.ExpertID, "order.deadline_extended", updated)
	return updated, nil
}

// CancelOverdue отменяет просроченный заказ. Доступно только заказчику и
// только когда дедлайн действительно прошёл: сам предикат вычисляется в
// хранилище, поэтому гонка с параллельной сдачей невозможна.
func (s *OrderService) CancelOverdue(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.requireParty(ctx, orderID, actorID, partyClient)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.CancelOverdueIf(ctx, orderID, s.now())
	if err != nil {
		return nil, s.mapOrderStatusErr(err, "отмена просроченного")
	}

	s.notify(ctx, order.ExpertID, "order.cancelled", updated)
	return updated, nil
}

type orderParty int

const (
	partyClient orderParty = iota
	partyExpert
)

// requireParty загружает заказ и проверяет, что действует нужная сторона.
func (s *OrderService) requireParty(ctx context.Context, orderID, actorID uuid.UUID, party orderParty) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order service: получение заказа: %w", err)
	}

	switch party {
	case partyClient:
		if order.ClientID != actorID {
			return nil, apperror.Forbidden("действие доступно только заказчику")
		}
	case partyExpert:
		if order.ExpertID != actorID {
			return nil, apperror.Forbidden("действие доступно только исполнителю")
		}
	}
	return order, nil
}

// attachDeliveryMessage добавляет файловое сообщение о сдаче в чат заказа.
func (s *OrderService) attachDeliveryMessage(ctx context.Context, order *models.Order, senderID, mediaID uuid.UUID) error {
	chat, err := s.chats.GetChatForOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("поиск чата заказа: %w", err)
	}

	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("получение медиафайла: %w", err)
	}
	if media.UserID != nil && *media.UserID != senderID {
		return apperror.ErrForbidden
	}

	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Type:     models.MessageTypeFile,
		Content:  media.FileName,
		MediaID:  &media.ID,
	}
	return s.chats.AddMessage(ctx, msg)
}

func (s *OrderService) mapOrderStatusErr(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperror.ErrOrderNotFound
	case errors.Is(err, common.ErrStatusConflict):
		return apperror.Conflict("текущее состояние заказа не допускает это действие")
	default:
		return fmt.Errorf("order service: %s: %w", action, err)
	}
}

func (s *OrderService) notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, event, payload); err != nil {
		logger.WithComponent("order").WithError(err).Warn("не удалось отправить уведомление")
	}
}
