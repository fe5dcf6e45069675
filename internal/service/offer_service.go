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
	"github.com/Argor01/OkoZnaniy-sub001/internal/validation"
)

// OfferRepo — хранилище полезных нагрузок коммерческих сообщений.
type OfferRepo interface {
	GetOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.OfferData, error)
	GetWorkOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.WorkOfferData, error)
	AcceptOffer(ctx context.Context, messageID, chatID uuid.UUID, order *models.Order, notBefore time.Time) (*models.OfferData, error)
	RejectOffer(ctx context.Context, messageID uuid.UUID, notBefore time.Time) (*models.OfferData, error)
	UpdateWorkOfferStatusIfNew(ctx context.Context, messageID uuid.UUID, status string) (*models.WorkOfferData, error)
	UpdateDeliveryStatusIf(ctx context.Context, messageID uuid.UUID, from, to string) (*models.WorkOfferData, error)
	DeliverWorkOffer(ctx context.Context, messageID uuid.UUID, fileMsg *models.Message) (*models.WorkOfferData, error)
}

// SendOfferInput — условия индивидуального предложения.
type SendOfferInput struct {
	WorkType    string    `json:"work_type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
	DeadlineAt  time.Time `json:"deadline_at"`
}

// OfferService управляет жизненным циклом индивидуальных предложений:
// отправка в чат, принятие с материализацией заказа, отклонение. Принятие и
// отклонение выполняются не более одного раза и только в течение окна
// действия предложения.
type OfferService struct {
	chats    ChatRepo
	offers   OfferRepo
	notifier Notifier

	offerTTL time.Duration
	now      func() time.Time
}

func NewOfferService(chats ChatRepo, offers OfferRepo, notifier Notifier, offerTTL time.Duration) *OfferService {
	if offerTTL <= 0 {
		offerTTL = models.OfferTTLDefault
	}
	return &OfferService{
		chats:    chats,
		offers:   offers,
		notifier: notifier,
		offerTTL: offerTTL,
		now:      time.Now,
	}
}

// SendOffer отправляет индивидуальное предложение в чат.
func (s *OfferService) SendOffer(ctx context.Context, senderID, chatID uuid.UUID, input SendOfferInput) (*models.Message, error) {
	input.Subject = validation.SanitizeText(input.Subject)
	input.WorkType = validation.SanitizeText(input.WorkType)
	input.Description = validation.SanitizeText(input.Description)
	if input.Subject == "" || input.WorkType == "" {
		return nil, apperror.Validation("предмет и тип работы обязательны")
	}
	if err := validation.ValidateLength("предмет", input.Subject, validation.MinSubjectLength, validation.MaxSubjectLength); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateCost("стоимость", input.Cost); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if !input.DeadlineAt.After(s.now()) {
		return nil, apperror.Validation("дедлайн предложения должен быть в будущем")
	}

	chat, err := s.getChatForParticipant(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Type:     models.MessageTypeOffer,
		Content:  fmt.Sprintf("Предложение: %s, %s", input.WorkType, input.Subject),
		Offer: &models.OfferData{
			WorkType:    input.WorkType,
			Subject:     input.Subject,
			Description: input.Description,
			Cost:        input.Cost,
			DeadlineAt:  input.DeadlineAt,
		},
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("offer service: отправка предложения: %w", err)
	}

	s.notify(ctx, chat.Peer(senderID), "offer.received", msg)
	msg.IsMine = true
	return msg, nil
}

// AcceptOffer принимает предложение и создаёт заказ по его условиям. Заказчиком
// становится принявший, исполнителем — отправитель предложения. Повторное
// принятие, принятие после отклонения или после истечения окна действия
// отклоняются как конфликт; заказ в этих случаях не создаётся.
func (s *OfferService) AcceptOffer(ctx context.Context, actorID, messageID uuid.UUID) (*models.Order, error) {
	msg, chat, err := s.loadOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("нельзя принять собственное предложение")
	}

	order := &models.Order{
		ClientID:    actorID,
		ExpertID:    msg.SenderID,
		Title:       fmt.Sprintf("%s: %s", msg.Offer.WorkType, msg.Offer.Subject),
		Description: msg.Offer.Description,
		Subject:     msg.Offer.Subject,
		WorkType:    msg.Offer.WorkType,
		Budget:      msg.Offer.Cost,
		Status:      models.OrderStatusInProgress,
		DeadlineAt:  msg.Offer.DeadlineAt,
	}

	notBefore := s.now().Add(-s.offerTTL)
	if _, err := s.offers.AcceptOffer(ctx, messageID, chat.ID, order, notBefore); err != nil {
		return nil, s.mapOfferStatusErr(err, "принятие")
	}

	s.notify(ctx, msg.SenderID, "offer.accepted", order)
	return order, nil
}

// RejectOffer отклоняет предложение. Действует при тех же предусловиях, что и
// принятие: только получатель, только из статуса new, только в окне действия.
func (s *OfferService) RejectOffer(ctx context.Context, actorID, messageID uuid.UUID) (*models.OfferData, error) {
	msg, _, err := s.loadOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("нельзя отклонить собственное предложение")
	}

	offer, err := s.offers.RejectOffer(ctx, messageID, s.now().Add(-s.offerTTL))
	if err != nil {
		return nil, s.mapOfferStatusErr(err, "отклонение")
	}

	s.notify(ctx, msg.SenderID, "offer.rejected", offer)
	return offer, nil
}

// loadOfferMessage загружает сообщение-предложение и его чат, проверяя тип
// сообщения и участие действующего пользователя.
func (s *OfferService) loadOfferMessage(ctx context.Context, actorID, messageID uuid.UUID) (*models.Message, *models.Chat, error) {
	msg, err := s.chats.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, nil, apperror.ErrOfferNotFound
		}
		return nil, nil, fmt.Errorf("offer service: получение сообщения: %w", err)
	}
	if msg.Type != models.MessageTypeOffer || msg.Offer == nil {
		return nil, nil, apperror.ErrOfferNotFound
	}

	chat, err := s.getChatForParticipant(ctx, actorID, msg.ChatID)
	if err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}

func (s *OfferService) getChatForParticipant(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, apperror.ErrChatNotFound
		}
		return nil, fmt.Errorf("offer service: получение чата: %w", err)
	}
	if !chat.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return chat, nil
}

func (s *OfferService) mapOfferStatusErr(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrOfferNotFound):
		return apperror.ErrOfferNotFound
	case errors.Is(err, common.ErrStatusConflict):
		return apperror.Conflict("предложение уже обработано или срок его действия истёк")
	default:
		return fmt.Errorf("offer service: %s предложения: %w", action, err)
	}
}

func (s *OfferService) notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, event, payload); err != nil {
		logger.WithComponent("offer").WithError(err).Warn("не удалось отправить уведомление")
	}
}
