package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

func fixedTime() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func newOfferServiceForTest(chats *mockChatRepo, offers *mockOfferRepo) *OfferService {
	svc := NewOfferService(chats, offers, nil, models.OfferTTLDefault)
	svc.now = fixedTime
	return svc
}

func offerChat(clientID, expertID uuid.UUID) *models.Chat {
	return &models.Chat{ID: uuid.New(), ClientID: clientID, ExpertID: expertID}
}

func offerMessage(chat *models.Chat, senderID uuid.UUID, createdAt time.Time) *models.Message {
	return &models.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: senderID,
		Type:     models.MessageTypeOffer,
		Offer: &models.OfferData{
			WorkType:    "Курсовая работа",
			Subject:     "Математический анализ",
			Description: "Пределы и ряды",
			Cost:        5000,
			DeadlineAt:  createdAt.Add(14 * 24 * time.Hour),
			Status:      models.OfferStatusNew,
			CreatedAt:   createdAt,
		},
	}
}

func TestOfferService_SendOffer_Validation(t *testing.T) {
	svc := newOfferServiceForTest(new(mockChatRepo), new(mockOfferRepo))
	ctx := context.Background()

	_, err := svc.SendOffer(ctx, uuid.New(), uuid.New(), SendOfferInput{
		WorkType: "Эссе", Subject: "История", Cost: 0, DeadlineAt: fixedTime().Add(time.Hour),
	})
	assert.True(t, apperror.IsValidation(err), "нулевая стоимость должна отклоняться")

	_, err = svc.SendOffer(ctx, uuid.New(), uuid.New(), SendOfferInput{
		WorkType: "Эссе", Subject: "История", Cost: 1000, DeadlineAt: fixedTime().Add(-time.Hour),
	})
	assert.True(t, apperror.IsValidation(err), "дедлайн в прошлом должен отклоняться")
}

func TestOfferService_AcceptOffer_CreatesOrderFromTerms(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	expertID := uuid.New()
	clientID := uuid.New()
	chat := offerChat(clientID, expertID)
	msg := offerMessage(chat, expertID, fixedTime().Add(-time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)

	accepted := *msg.Offer
	accepted.Status = models.OfferStatusAccepted
	offers.On("AcceptOffer", ctx, msg.ID, chat.ID, mock.AnythingOfType("*models.Order"), fixedTime().Add(-models.OfferTTLDefault)).
		Return(&accepted, nil)

	order, err := svc.AcceptOffer(ctx, clientID, msg.ID)

	assert.NoError(t, err)
	assert.Equal(t, clientID, order.ClientID)
	assert.Equal(t, expertID, order.ExpertID)
	assert.Equal(t, models.OrderStatusInProgress, order.Status)
	assert.Equal(t, msg.Offer.Cost, order.Budget)
	assert.Equal(t, msg.Offer.DeadlineAt, order.DeadlineAt)
	assert.Equal(t, msg.Offer.Subject, order.Subject)
}

func TestOfferService_AcceptOffer_OwnOfferForbidden(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	expertID := uuid.New()
	chat := offerChat(uuid.New(), expertID)
	msg := offerMessage(chat, expertID, fixedTime().Add(-time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)

	_, err := svc.AcceptOffer(ctx, expertID, msg.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestOfferService_AcceptOffer_OutsiderForbidden(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	chat := offerChat(uuid.New(), uuid.New())
	msg := offerMessage(chat, chat.ExpertID, fixedTime().Add(-time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)

	_, err := svc.AcceptOffer(ctx, uuid.New(), msg.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestOfferService_AcceptOffer_AlreadyHandledConflict(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	chat := offerChat(uuid.New(), uuid.New())
	msg := offerMessage(chat, chat.ExpertID, fixedTime().Add(-time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)
	offers.On("AcceptOffer", ctx, msg.ID, chat.ID, mock.Anything, mock.Anything).
		Return(nil, common.ErrStatusConflict)

	_, err := svc.AcceptOffer(ctx, chat.ClientID, msg.ID)
	assert.True(t, apperror.IsConflict(err), "повторная обработка предложения должна быть конфликтом")
}

func TestOfferService_RejectOffer_ThenAcceptConflict(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	chat := offerChat(uuid.New(), uuid.New())
	msg := offerMessage(chat, chat.ExpertID, fixedTime().Add(-time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)

	rejected := *msg.Offer
	rejected.Status = models.OfferStatusRejected
	offers.On("RejectOffer", ctx, msg.ID, mock.Anything).Return(&rejected, nil).Once()

	offer, err := svc.RejectOffer(ctx, chat.ClientID, msg.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, offer.Status)

	// После отклонения условный переход в хранилище больше не находит строку
	// со статусом new.
	offers.On("AcceptOffer", ctx, msg.ID, chat.ID, mock.Anything, mock.Anything).
		Return(nil, common.ErrStatusConflict)

	_, err = svc.AcceptOffer(ctx, chat.ClientID, msg.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestOfferService_ExpiryWindowPassedToStore(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	chat := offerChat(uuid.New(), uuid.New())
	// Предложение старше 48 часов.
	msg := offerMessage(chat, chat.ExpertID, fixedTime().Add(-49*time.Hour))

	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)
	chats.On("GetChatByID", ctx, chat.ID).Return(chat, nil)

	notBefore := fixedTime().Add(-models.OfferTTLDefault)
	offers.On("AcceptOffer", ctx, msg.ID, chat.ID, mock.Anything, notBefore).
		Return(nil, common.ErrStatusConflict)
	offers.On("RejectOffer", ctx, msg.ID, notBefore).
		Return(nil, common.ErrStatusConflict)

	_, err := svc.AcceptOffer(ctx, chat.ClientID, msg.ID)
	assert.True(t, apperror.IsConflict(err), "принятие истёкшего предложения — конфликт")

	_, err = svc.RejectOffer(ctx, chat.ClientID, msg.ID)
	assert.True(t, apperror.IsConflict(err), "отклонение истёкшего предложения — конфликт")

	assert.True(t, msg.Offer.IsExpired(fixedTime(), models.OfferTTLDefault))
}

func TestOfferService_AcceptOffer_TextMessageNotOffer(t *testing.T) {
	chats := new(mockChatRepo)
	offers := new(mockOfferRepo)
	svc := newOfferServiceForTest(chats, offers)
	ctx := context.Background()

	msg := &models.Message{ID: uuid.New(), ChatID: uuid.New(), SenderID: uuid.New(), Type: models.MessageTypeText}
	chats.On("GetMessageByID", ctx, msg.ID).Return(msg, nil)

	_, err := svc.AcceptOffer(ctx, uuid.New(), msg.ID)
	assert.True(t, apperror.IsNotFound(err))
}
