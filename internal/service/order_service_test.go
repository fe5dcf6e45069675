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
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

type orderFixture struct {
	orders  *mockOrderRepo
	chats   *mockChatRepo
	media   *mockMediaRepo
	ratings *mockRatingRecorder
	svc     *OrderService

	order *models.Order
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:  new(mockOrderRepo),
		chats:   new(mockChatRepo),
		media:   new(mockMediaRepo),
		ratings: new(mockRatingRecorder),
	}
	f.svc = NewOrderService(f.orders, f.chats, f.media, nil, f.ratings)
	f.svc.now = fixedTime

	f.order = &models.Order{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		ExpertID:   uuid.New(),
		Title:      "Курсовая работа: Математический анализ",
		Budget:     5000,
		Status:     models.OrderStatusInProgress,
		DeadlineAt: fixedTime().Add(7 * 24 * time.Hour),
	}
	f.orders.On("GetByID", mock.Anything, f.order.ID).Return(f.order, nil)
	return f
}

func (f *orderFixture) withStatus(status string) *models.Order {
	updated := *f.order
	updated.Status = status
	return &updated
}

func TestOrderService_GetOrder_Access(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.GetOrder(ctx, f.order.ClientID, models.RoleClient, f.order.ID)
	assert.NoError(t, err)
	assert.Equal(t, f.order.ID, order.ID)

	_, err = f.svc.GetOrder(ctx, uuid.New(), models.RoleClient, f.order.ID)
	assert.True(t, apperror.IsForbidden(err), "посторонний не видит чужой заказ")

	// Поддержка видит любой заказ.
	_, err = f.svc.GetOrder(ctx, uuid.New(), models.RoleSupport, f.order.ID)
	assert.NoError(t, err)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	f := newOrderFixture(t)
	missing := uuid.New()
	f.orders.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrOrderNotFound)

	_, err := f.svc.GetOrder(context.Background(), f.order.ClientID, models.RoleClient, missing)
	assert.True(t, apperror.IsNotFound(err))
}

func TestOrderService_Submit_ExpertOnly(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.order.ClientID, f.order.ID, nil)
	assert.True(t, apperror.IsForbidden(err), "заказчик не может сдавать работу")

	f.orders.On("SubmitIf", ctx, f.order.ID, fixedTime()).
		Return(f.withStatus(models.OrderStatusReview), nil)

	order, err := f.svc.Submit(ctx, f.order.ExpertID, f.order.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusReview, order.Status)
}

func TestOrderService_Submit_AfterDeadlineConflict(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	// Дедлайн прошёл: предикат в хранилище не находит подходящую строку.
	f.orders.On("SubmitIf", ctx, f.order.ID, fixedTime()).
		Return(nil, common.ErrStatusConflict)

	_, err := f.svc.Submit(ctx, f.order.ExpertID, f.order.ID, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestOrderService_Submit_AttachesDeliveryFile(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	mediaID := uuid.New()
	chat := &models.Chat{ID: uuid.New(), ClientID: f.order.ClientID, ExpertID: f.order.ExpertID}

	f.orders.On("SubmitIf", ctx, f.order.ID, fixedTime()).
		Return(f.withStatus(models.OrderStatusReview), nil)
	f.media.On("GetByID", ctx, mediaID).
		Return(&models.MediaFile{ID: mediaID, UserID: &f.order.ExpertID, FileName: "work.docx"}, nil)
	f.chats.On("GetChatForOrder", ctx, f.order.ID).Return(chat, nil)
	f.chats.On("AddMessage", ctx, mock.MatchedBy(func(m *models.Message) bool {
		return m.Type == models.MessageTypeFile && m.ChatID == chat.ID && m.SenderID == f.order.ExpertID
	})).Return(nil)

	_, err := f.svc.Submit(ctx, f.order.ExpertID, f.order.ID, &mediaID)

	assert.NoError(t, err)
	f.chats.AssertExpectations(t)
}

func TestOrderService_Approve_RecordsRating(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.order.Status = models.OrderStatusReview

	f.orders.On("UpdateStatusIf", ctx, f.order.ID, models.OrderStatusCompleted, []string{models.OrderStatusReview}).
		Return(f.withStatus(models.OrderStatusCompleted), nil)

	comment := "Всё отлично"
	f.ratings.On("RecordRating", ctx, &f.order.ID, f.order.ClientID, f.order.ExpertID, 5, &comment).
		Return(nil)

	rating := 5
	order, err := f.svc.Approve(ctx, f.order.ClientID, f.order.ID, &rating, &comment)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	f.ratings.AssertExpectations(t)
}

func TestOrderService_Approve_RatingValidation(t *testing.T) {
	f := newOrderFixture(t)

	rating := 7
	_, err := f.svc.Approve(context.Background(), f.order.ClientID, f.order.ID, &rating, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestOrderService_RequestRevision_ClientOnly(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.RequestRevision(ctx, f.order.ExpertID, f.order.ID)
	assert.True(t, apperror.IsForbidden(err))

	f.orders.On("UpdateStatusIf", ctx, f.order.ID, models.OrderStatusRevision, []string{models.OrderStatusReview}).
		Return(f.withStatus(models.OrderStatusRevision), nil)

	order, err := f.svc.RequestRevision(ctx, f.order.ClientID, f.order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusRevision, order.Status)
}

func TestOrderService_ExtendDeadline_MustBeFuture(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.ExtendDeadline(ctx, f.order.ClientID, f.order.ID, fixedTime().Add(-time.Hour))
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.ExtendDeadline(ctx, f.order.ClientID, f.order.ID, fixedTime())
	assert.True(t, apperror.IsValidation(err), "дедлайн ровно сейчас — тоже не в будущем")
}

func TestOrderService_ExtendDeadline_Success(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	newDeadline := fixedTime().Add(72 * time.Hour)

	extended := f.withStatus(f.order.Status)
	extended.DeadlineAt = newDeadline
	f.orders.On("ExtendDeadlineIf", ctx, f.order.ID, newDeadline, fixedTime()).
		Return(extended, nil)

	order, err := f.svc.ExtendDeadline(ctx, f.order.ClientID, f.order.ID, newDeadline)
	assert.NoError(t, err)
	assert.Equal(t, newDeadline, order.DeadlineAt)
}

func TestOrderService_CancelOverdue(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.orders.On("CancelOverdueIf", ctx, f.order.ID, fixedTime()).
		Return(f.withStatus(models.OrderStatusCancelled), nil).Once()

	order, err := f.svc.CancelOverdue(ctx, f.order.ClientID, f.order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	// Повторная отмена: заказ уже в терминальном статусе.
	f.orders.On("CancelOverdueIf", ctx, f.order.ID, fixedTime()).
		Return(nil, common.ErrStatusConflict)

	_, err = f.svc.CancelOverdue(ctx, f.order.ClientID, f.order.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestOrderService_CancelOverdue_ExpertForbidden(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CancelOverdue(context.Background(), f.order.ExpertID, f.order.ID)
	assert.True(t, apperror.IsForbidden(err))
}
