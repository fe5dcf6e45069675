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
	"github.com/Argor01/OkoZnaniy-sub001/internal/validation"
)

// ChatRepo — хранилище чатов и сообщений, как его видит слой сервисов.
type ChatRepo interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChatByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	GetChatByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)
	GetSupportChat(ctx context.Context, userID uuid.UUID) (*models.Chat, error)
	GetChatForOrder(ctx context.Context, orderID uuid.UUID) (*models.Chat, error)
	ListMyChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	HasActiveOrder(ctx context.Context, chatID uuid.UUID) (bool, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
	AddMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]models.Message, error)
	GetLastMessage(ctx context.Context, chatID uuid.UUID) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, readerID uuid.UUID) error
}

// MediaRepo — хранилище метаданных медиафайлов.
type MediaRepo interface {
	Create(ctx context.Context, media *models.MediaFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	CanAccess(ctx context.Context, mediaID, userID uuid.UUID) (bool, error)
}

// Notifier доставляет событие пользователю. Ошибки доставки не влияют на
// исход основной операции.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error
}

// ChatService управляет чатами и обычными сообщениями. Окно действия
// предложений нужно ему только для вычисляемого поля is_expired: само окно
// обеспечивает движок предложений, и оба должны считать его одинаково.
type ChatService struct {
	chats    ChatRepo
	media    MediaRepo
	notifier Notifier

	offerTTL time.Duration
	now      func() time.Time
}

func NewChatService(chats ChatRepo, media MediaRepo, notifier Notifier, offerTTL time.Duration) *ChatService {
	if offerTTL <= 0 {
		offerTTL = models.OfferTTLDefault
	}
	return &ChatService{
		chats:    chats,
		media:    media,
		notifier: notifier,
		offerTTL: offerTTL,
		now:      time.Now,
	}
}

// decorateForReader вычисляет производные поля сообщения для читателя.
func (s *ChatService) decorateForReader(msg *models.Message, readerID uuid.UUID) {
	msg.IsMine = msg.SenderID == readerID
	if msg.Offer != nil {
		msg.Offer.Expired = msg.Offer.IsExpired(s.now(), s.offerTTL)
	}
}

// GetOrCreateChat возвращает существующий чат с собеседником либо создаёт
// новый. Между парой пользователей существует не более одного обычного чата.
func (s *ChatService) GetOrCreateChat(ctx context.Context, userID, peerID uuid.UUID, contextTitle *string) (*models.Chat, error) {
	if userID == peerID {
		return nil, apperror.Validation("нельзя создать чат с самим собой")
	}

	chat, err := s.chats.GetChatByParticipants(ctx, userID, peerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrChatNotFound) {
		return nil, fmt.Errorf("chat service: поиск чата: %w", err)
	}

	chat = &models.Chat{
		ClientID:     userID,
		ExpertID:     peerID,
		ContextTitle: contextTitle,
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("chat service: создание чата: %w", err)
	}
	return chat, nil
}

// GetChat возвращает чат, доступен только участникам.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, apperror.ErrChatNotFound
		}
		return nil, fmt.Errorf("chat service: получение чата: %w", err)
	}
	if !chat.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return chat, nil
}

// ListMyChats возвращает чаты пользователя вместе с последними сообщениями.
func (s *ChatService) ListMyChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	chats, err := s.chats.ListMyChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("chat service: список чатов: %w", err)
	}

	for i := range chats {
		last, err := s.chats.GetLastMessage(ctx, chats[i].ID)
		if err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				continue
			}
			return nil, fmt.Errorf("chat service: последнее сообщение: %w", err)
		}
		s.decorateForReader(last, userID)
		chats[i].LastMessage = last
	}

	return chats, nil
}

// ListMessages возвращает страницу сообщений чата с вычисленным признаком
// is_mine для читателя.
func (s *ChatService) ListMessages(ctx context.Context, userID, chatID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.chats.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("chat service: список сообщений: %w", err)
	}
	for i := range messages {
		s.decorateForReader(&messages[i], userID)
	}
	return messages, nil
}

// SendText отправляет текстовое сообщение.
func (s *ChatService) SendText(ctx context.Context, senderID, chatID uuid.UUID, content string) (*models.Message, error) {
	content = validation.SanitizeText(content)
	if err := validation.ValidateLength("текст сообщения", content, validation.MinMessageLength, validation.MaxMessageLength); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	chat, err := s.GetChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Type:     models.MessageTypeText,
		Content:  content,
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("chat service: отправка сообщения: %w", err)
	}

	s.notifyPeer(ctx, chat, senderID, "chat.message", msg)
	msg.IsMine = true
	return msg, nil
}

// SendFile отправляет файловое сообщение, ссылающееся на загруженный медиафайл.
func (s *ChatService) SendFile(ctx context.Context, senderID, chatID, mediaID uuid.UUID) (*models.Message, error) {
	chat, err := s.GetChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return nil, apperror.ErrMediaNotFound
		}
		return nil, fmt.Errorf("chat service: получение медиафайла: %w", err)
	}
	if media.UserID != nil && *media.UserID != senderID {
		return nil, apperror.ErrForbidden
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Type:     models.MessageTypeFile,
		Content:  media.FileName,
		MediaID:  &media.ID,
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("chat service: отправка файла: %w", err)
	}

	s.notifyPeer(ctx, chat, senderID, "chat.message", msg)
	msg.IsMine = true
	return msg, nil
}

// MarkRead помечает прочитанными все входящие сообщения чата.
func (s *ChatService) MarkRead(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return err
	}
	if err := s.chats.MarkMessagesRead(ctx, chatID, userID); err != nil {
		return fmt.Errorf("chat service: отметка прочитанных: %w", err)
	}
	return nil
}

// DeleteChat удаляет чат. Чат с привязанным незавершённым заказом удалить
// нельзя: переписка — доказательная база по заказу.
func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return err
	}

	active, err := s.chats.HasActiveOrder(ctx, chatID)
	if err != nil {
		return fmt.Errorf("chat service: проверка активных заказов: %w", err)
	}
	if active {
		return apperror.Conflict("нельзя удалить чат с активным заказом")
	}

	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return apperror.ErrChatNotFound
		}
		return fmt.Errorf("chat service: удаление чата: %w", err)
	}
	return nil
}

// notifyPeer отправляет событие второму участнику чата.
func (s *ChatService) notifyPeer(ctx context.Context, chat *models.Chat, senderID uuid.UUID, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, chat.Peer(senderID), event, payload); err != nil {
		logger.WithComponent("chat").WithError(err).Warn("не удалось отправить уведомление")
	}
}
