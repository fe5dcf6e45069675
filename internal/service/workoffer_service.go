package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/validation"
)

// FileStore сохраняет содержимое файлов во внешнем хранилище.
type FileStore interface {
	Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, string, int64, error)
}

// SendWorkOfferInput — условия предложения готовой работы.
type SendWorkOfferInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Cost        float64    `json:"cost"`
	WorkID      *uuid.UUID `json:"work_id,omitempty"`
}

// WorkOfferService управляет предложениями готовых работ и их сдачей.
// После принятия предложение проходит конвейер сдачи строго вперёд:
// pending -> awaiting_upload -> delivered -> accepted | rejected.
type WorkOfferService struct {
	chats    ChatRepo
	offers   OfferRepo
	media    MediaRepo
	storage  FileStore
	notifier Notifier
	ratings  RatingRecorder

	now func() time.Time
}

func NewWorkOfferService(chats ChatRepo, offers OfferRepo, media MediaRepo, storage FileStore, notifier Notifier, ratings RatingRecorder) *WorkOfferService {
	return &WorkOfferService{
		chats:    chats,
		offers:   offers,
		media:    media,
		storage:  storage,
		notifier: notifier,
		ratings:  ratings,
		now:      time.Now,
	}
}

// SendWorkOffer отправляет предложение готовой работы в чат.
func (s *WorkOfferService) SendWorkOffer(ctx context.Context, senderID, chatID uuid.UUID, input SendWorkOfferInput) (*models.Message, error) {
	input.Title = validation.SanitizeText(input.Title)
	input.Description = validation.SanitizeText(input.Description)
	if input.Title == "" {
		return nil, apperror.Validation("название работы обязательно")
	}
	if err := validation.ValidateCost("стоимость", input.Cost); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	chat, err := s.getChatForParticipant(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Type:     models.MessageTypeWorkOffer,
		Content:  fmt.Sprintf("Готовая работа: %s", input.Title),
		WorkOffer: &models.WorkOfferData{
			Title:       input.Title,
			Description: input.Description,
			Cost:        input.Cost,
			WorkID:      input.WorkID,
		},
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("work offer service: отправка предложения: %w", err)
	}

	s.notify(ctx, chat.Peer(senderID), "work_offer.received", msg)
	msg.IsMine = true
	return msg, nil
}

// Accept принимает предложение готовой работы. Доступно только получателю и
// только один раз; после принятия начинается конвейер сдачи в статусе pending.
func (s *WorkOfferService) Accept(ctx context.Context, actorID, messageID uuid.UUID) (*models.WorkOfferData, error) {
	msg, _, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("нельзя принять собственное предложение")
	}

	offer, err := s.offers.UpdateWorkOfferStatusIfNew(ctx, messageID, models.OfferStatusAccepted)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "принятие")
	}

	s.notify(ctx, msg.SenderID, "work_offer.accepted", offer)
	return offer, nil
}

// Reject отклоняет предложение готовой работы.
func (s *WorkOfferService) Reject(ctx context.Context, actorID, messageID uuid.UUID) (*models.WorkOfferData, error) {
	msg, _, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("нельзя отклонить собственное предложение")
	}

	offer, err := s.offers.UpdateWorkOfferStatusIfNew(ctx, messageID, models.OfferStatusRejected)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "отклонение")
	}

	s.notify(ctx, msg.SenderID, "work_offer.rejected", offer)
	return offer, nil
}

// MarkReady сообщает, что продавец готов передать работу: переход
// pending -> awaiting_upload. Доступно только отправителю предложения.
func (s *WorkOfferService) MarkReady(ctx context.Context, actorID, messageID uuid.UUID) (*models.WorkOfferData, error) {
	msg, chat, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, apperror.Forbidden("передать работу может только её продавец")
	}

	offer, err := s.offers.UpdateDeliveryStatusIf(ctx, messageID, models.DeliveryStatusPending, models.DeliveryStatusAwaitingUpload)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "подготовка к сдаче")
	}

	s.notify(ctx, chat.Peer(actorID), "work_offer.ready", offer)
	return offer, nil
}

// Deliver сдаёт файл работы: содержимое сохраняется в хранилище, в чат
// добавляется файловое сообщение, сдача переходит в delivered. Сдать можно
// только из awaiting_upload; попытка сдать из pending или повторно — конфликт.
func (s *WorkOfferService) Deliver(ctx context.Context, actorID, messageID uuid.UUID, fileName string, r io.Reader) (*models.WorkOfferData, error) {
	msg, chat, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, apperror.Forbidden("сдать работу может только её продавец")
	}
	// Предварительная проверка, чтобы не сохранять файл, который условный
	// переход всё равно отбросит. Итоговое решение остаётся за транзакцией.
	if msg.WorkOffer.DeliveryStatus != models.DeliveryStatusAwaitingUpload {
		return nil, apperror.Conflict("сдача возможна только после отметки о готовности")
	}

	relPath, contentType, size, err := s.storage.Save(ctx, actorID, fileName, r)
	if err != nil {
		return nil, fmt.Errorf("work offer service: сохранение файла: %w", err)
	}

	media := &models.MediaFile{
		UserID:   &actorID,
		FilePath: relPath,
		FileName: fileName,
		FileType: contentType,
		FileSize: size,
	}
	if err := s.media.Create(ctx, media); err != nil {
		return nil, fmt.Errorf("work offer service: сохранение метаданных файла: %w", err)
	}

	fileMsg := &models.Message{
		ChatID:   msg.ChatID,
		SenderID: actorID,
		Type:     models.MessageTypeFile,
		Content:  fileName,
		MediaID:  &media.ID,
	}
	offer, err := s.offers.DeliverWorkOffer(ctx, messageID, fileMsg)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "сдача")
	}

	s.notify(ctx, chat.Peer(actorID), "work_offer.delivered", offer)
	return offer, nil
}

// AcceptDelivery принимает сданную работу. Доступно только покупателю; при
// желании он может оставить оценку продавцу.
func (s *WorkOfferService) AcceptDelivery(ctx context.Context, actorID, messageID uuid.UUID, rating *int, comment *string) (*models.WorkOfferData, error) {
	msg, _, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("принять сдачу может только покупатель")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperror.Validation("оценка должна быть от 1 до 5")
	}

	offer, err := s.offers.UpdateDeliveryStatusIf(ctx, messageID, models.DeliveryStatusDelivered, models.DeliveryStatusAccepted)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "принятие сдачи")
	}

	if rating != nil && s.ratings != nil {
		if err := s.ratings.RecordRating(ctx, nil, actorID, msg.SenderID, *rating, comment); err != nil {
			logger.WithComponent("work_offer").WithError(err).Warn("не удалось передать оценку")
		}
	}

	s.notify(ctx, msg.SenderID, "work_offer.delivery_accepted", offer)
	return offer, nil
}

// RejectDelivery отклоняет сданную работу.
func (s *WorkOfferService) RejectDelivery(ctx context.Context, actorID, messageID uuid.UUID) (*models.WorkOfferData, error) {
	msg, _, err := s.loadWorkOfferMessage(ctx, actorID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == actorID {
		return nil, apperror.Forbidden("отклонить сдачу может только покупатель")
	}

	offer, err := s.offers.UpdateDeliveryStatusIf(ctx, messageID, models.DeliveryStatusDelivered, models.DeliveryStatusRejected)
	if err != nil {
		return nil, s.mapWorkOfferStatusErr(err, "отклонение сдачи")
	}

	s.notify(ctx, msg.SenderID, "work_offer.delivery_rejected", offer)
	return offer, nil
}

func (s *WorkOfferService) loadWorkOfferMessage(ctx context.Context, actorID, messageID uuid.UUID) (*models.Message, *models.Chat, error) {
	msg, err := s.chats.GetMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, nil, apperror.ErrOfferNotFound
		}
		return nil, nil, fmt.Errorf("work offer service: получение сообщения: %w", err)
	}
	if msg.Type != models.MessageTypeWorkOffer || msg.WorkOffer == nil {
		return nil, nil, apperror.ErrOfferNotFound
	}

	chat, err := s.getChatForParticipant(ctx, actorID, msg.ChatID)
	if err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}

func (s *WorkOfferService) getChatForParticipant(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, apperror.ErrChatNotFound
		}
		return nil, fmt.Errorf("work offer service: получение чата: %w", err)
	}
	if !chat.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return chat, nil
}

func (s *WorkOfferService) mapWorkOfferStatusErr(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrWorkOfferNotFound):
		return apperror.ErrOfferNotFound
	case errors.Is(err, common.ErrStatusConflict):
		return apperror.Conflict("текущее состояние работы не допускает это действие")
	default:
		return fmt.Errorf("work offer service: %s: %w", action, err)
	}
}

func (s *WorkOfferService) notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, event, payload); err != nil {
		logger.WithComponent("work_offer").WithError(err).Warn("не удалось отправить уведомление")
	}
}
