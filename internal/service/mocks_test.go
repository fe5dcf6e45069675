package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
)

type mockChatRepo struct {
	mock.Mock
}

func (m *mockChatRepo) CreateChat(ctx context.Context, chat *models.Chat) error {
	args := m.Called(ctx, chat)
	if args.Error(0) == nil && chat.ID == uuid.Nil {
		chat.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockChatRepo) GetChatByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *mockChatRepo) GetChatByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *mockChatRepo) GetSupportChat(ctx context.Context, userID uuid.UUID) (*models.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *mockChatRepo) GetChatForOrder(ctx context.Context, orderID uuid.UUID) (*models.Chat, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *mockChatRepo) ListMyChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *mockChatRepo) HasActiveOrder(ctx context.Context, chatID uuid.UUID) (bool, error) {
	args := m.Called(ctx, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChatRepo) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *mockChatRepo) AddMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil && msg.ID == uuid.Nil {
		msg.ID = uuid.New()
		msg.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockChatRepo) GetMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *mockChatRepo) ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockChatRepo) GetLastMessage(ctx context.Context, chatID uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *mockChatRepo) MarkMessagesRead(ctx context.Context, chatID, readerID uuid.UUID) error {
	args := m.Called(ctx, chatID, readerID)
	return args.Error(0)
}

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) GetOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.OfferData, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferData), args.Error(1)
}

func (m *mockOfferRepo) GetWorkOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.WorkOfferData, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOfferData), args.Error(1)
}

func (m *mockOfferRepo) AcceptOffer(ctx context.Context, messageID, chatID uuid.UUID, order *models.Order, notBefore time.Time) (*models.OfferData, error) {
	args := m.Called(ctx, messageID, chatID, order, notBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return args.Get(0).(*models.OfferData), args.Error(1)
}

func (m *mockOfferRepo) RejectOffer(ctx context.Context, messageID uuid.UUID, notBefore time.Time) (*models.OfferData, error) {
	args := m.Called(ctx, messageID, notBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferData), args.Error(1)
}

func (m *mockOfferRepo) UpdateWorkOfferStatusIfNew(ctx context.Context, messageID uuid.UUID, status string) (*models.WorkOfferData, error) {
	args := m.Called(ctx, messageID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOfferData), args.Error(1)
}

func (m *mockOfferRepo) UpdateDeliveryStatusIf(ctx context.Context, messageID uuid.UUID, from, to string) (*models.WorkOfferData, error) {
	args := m.Called(ctx, messageID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOfferData), args.Error(1)
}

func (m *mockOfferRepo) DeliverWorkOffer(ctx context.Context, messageID uuid.UUID, fileMsg *models.Message) (*models.WorkOfferData, error) {
	args := m.Called(ctx, messageID, fileMsg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOfferData), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, to string, from ...string) (*models.Order, error) {
	args := m.Called(ctx, id, to, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) SubmitIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) CancelOverdueIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ExtendDeadlineIf(ctx context.Context, id uuid.UUID, newDeadline, now time.Time) (*models.Order, error) {
	args := m.Called(ctx, id, newDeadline, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockClaimRepo struct {
	mock.Mock
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *models.Claim) error {
	args := m.Called(ctx, claim)
	if args.Error(0) == nil && claim.ID == uuid.Nil {
		claim.ID = uuid.New()
		claim.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockClaimRepo) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, limit, offset int) ([]models.Claim, error) {
	args := m.Called(ctx, initiatorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Claim), args.Error(1)
}

type mockMediaRepo struct {
	mock.Mock
}

func (m *mockMediaRepo) Create(ctx context.Context, media *models.MediaFile) error {
	args := m.Called(ctx, media)
	if args.Error(0) == nil && media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockMediaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaFile), args.Error(1)
}

func (m *mockMediaRepo) CanAccess(ctx context.Context, mediaID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, mediaID, userID)
	return args.Bool(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error {
	args := m.Called(ctx, userID, event, payload)
	return args.Error(0)
}

type mockRatingRecorder struct {
	mock.Mock
}

func (m *mockRatingRecorder) RecordRating(ctx context.Context, orderID *uuid.UUID, raterID, ratedID uuid.UUID, rating int, comment *string) error {
	args := m.Called(ctx, orderID, raterID, ratedID, rating, comment)
	return args.Error(0)
}

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, string, int64, error) {
	args := m.Called(ctx, userID, originalName, r)
	return args.String(0), args.String(1), args.Get(2).(int64), args.Error(3)
}

func (m *mockFileStore) Open(ctx context.Context, relativePath string) (io.ReadCloser, error) {
	args := m.Called(ctx, relativePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
