package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
)

type claimFixture struct {
	claims *mockClaimRepo
	chats  *mockChatRepo
	orders *mockOrderRepo
	media  *mockMediaRepo
	svc    *ClaimService

	supportID uuid.UUID
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	f := &claimFixture{
		claims:    new(mockClaimRepo),
		chats:     new(mockChatRepo),
		orders:    new(mockOrderRepo),
		media:     new(mockMediaRepo),
		supportID: uuid.New(),
	}
	f.svc = NewClaimService(f.claims, f.chats, f.orders, f.media, nil, f.supportID)
	return f
}

func strPtr(s string) *string { return &s }

func TestClaimService_CreateClaim_NotDeliveredRequiresAnswers(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()
	orderID := uuid.New()

	cases := []struct {
		name  string
		input CreateClaimInput
	}{
		{"без заказа", CreateClaimInput{
			Category: models.ClaimCategoryNotDelivered,
			Subject:  "Работа не сдана", Description: "Дедлайн прошёл неделю назад",
		}},
		{"без актуальности", CreateClaimInput{
			OrderID:  &orderID,
			Category: models.ClaimCategoryNotDelivered,
			Subject:  "Работа не сдана", Description: "Дедлайн прошёл неделю назад",
			RefundType: strPtr(models.RefundTypePrepayment),
		}},
		{"без возврата", CreateClaimInput{
			OrderID:  &orderID,
			Category: models.ClaimCategoryNotDelivered,
			Subject:  "Работа не сдана", Description: "Дедлайн прошёл неделю назад",
			OrderRelevance: strPtr(models.OrderRelevanceStillWanted),
		}},
		{"неизвестный возврат", CreateClaimInput{
			OrderID:  &orderID,
			Category: models.ClaimCategoryNotDelivered,
			Subject:  "Работа не сдана", Description: "Дедлайн прошёл неделю назад",
			OrderRelevance: strPtr(models.OrderRelevanceStillWanted),
			RefundType:     strPtr("full_plus_damages"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateClaim(ctx, initiatorID, tc.input)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestClaimService_CreateClaim_BasicValidation(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateClaim(ctx, uuid.New(), CreateClaimInput{
		Category: models.ClaimCategoryOther, Subject: "   ", Description: "Описание",
	})
	assert.True(t, apperror.IsValidation(err), "пустая тема")

	_, err = f.svc.CreateClaim(ctx, uuid.New(), CreateClaimInput{
		Category: "bribery", Subject: "Тема", Description: "Описание",
	})
	assert.True(t, apperror.IsValidation(err), "неизвестная категория")
}

func TestClaimService_CreateClaim_OutsiderForbidden(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	order := &models.Order{ID: uuid.New(), ClientID: uuid.New(), ExpertID: uuid.New()}
	f.orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := f.svc.CreateClaim(ctx, uuid.New(), CreateClaimInput{
		OrderID:  &order.ID,
		Category: models.ClaimCategoryPoorQuality,
		Subject:  "Низкое качество", Description: "Работа не соответствует заданию",
	})
	assert.True(t, apperror.IsForbidden(err))
}

func TestClaimService_CreateClaim_ForeignAttachmentForbidden(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()

	ownerID := uuid.New()
	attachmentID := uuid.New()
	f.media.On("GetByID", ctx, attachmentID).
		Return(&models.MediaFile{ID: attachmentID, UserID: &ownerID}, nil)

	_, err := f.svc.CreateClaim(ctx, initiatorID, CreateClaimInput{
		Category: models.ClaimCategoryOther,
		Subject:  "Спорная ситуация", Description: "Подробности во вложении",
		AttachmentIDs: []uuid.UUID{attachmentID},
	})

	assert.True(t, apperror.IsForbidden(err), "чужой файл нельзя приложить к претензии")
	f.claims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClaimService_CreateClaim_UnknownAttachmentNotFound(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	attachmentID := uuid.New()
	f.media.On("GetByID", ctx, attachmentID).Return(nil, repository.ErrMediaNotFound)

	_, err := f.svc.CreateClaim(ctx, uuid.New(), CreateClaimInput{
		Category: models.ClaimCategoryOther,
		Subject:  "Спорная ситуация", Description: "Подробности во вложении",
		AttachmentIDs: []uuid.UUID{attachmentID},
	})

	assert.True(t, apperror.IsNotFound(err))
	f.claims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClaimService_CreateClaim_MirrorsToSupportChat(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()
	orderID := uuid.New()

	order := &models.Order{ID: orderID, ClientID: initiatorID, ExpertID: uuid.New()}
	f.orders.On("GetByID", ctx, orderID).Return(order, nil)
	f.claims.On("Create", ctx, mock.AnythingOfType("*models.Claim")).Return(nil)

	// Чата с поддержкой ещё нет: он создаётся на лету.
	f.chats.On("GetSupportChat", ctx, initiatorID).Return(nil, repository.ErrChatNotFound)
	f.chats.On("CreateChat", ctx, mock.MatchedBy(func(c *models.Chat) bool {
		return c.IsSupport && c.ClientID == initiatorID && c.ExpertID == f.supportID
	})).Return(nil)
	f.chats.On("AddMessage", ctx, mock.MatchedBy(func(m *models.Message) bool {
		return m.SenderID == initiatorID && strings.Contains(m.Content, "Претензия")
	})).Return(nil)

	claim, err := f.svc.CreateClaim(ctx, initiatorID, CreateClaimInput{
		OrderID:        &orderID,
		Category:       models.ClaimCategoryNotDelivered,
		OrderRelevance: strPtr(models.OrderRelevanceStillWanted),
		RefundType:     strPtr(models.RefundTypePrepayment),
		Subject:        "Работа не сдана",
		Description:    "Исполнитель пропал после дедлайна",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, claim.ID)
	assert.Equal(t, initiatorID, claim.InitiatorID)
	f.chats.AssertExpectations(t)
}

func TestClaimService_CreateClaim_SupportChatFailureNotFatal(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()

	f.claims.On("Create", ctx, mock.AnythingOfType("*models.Claim")).Return(nil)
	f.chats.On("GetSupportChat", ctx, initiatorID).Return(nil, assert.AnError)

	claim, err := f.svc.CreateClaim(ctx, initiatorID, CreateClaimInput{
		Category: models.ClaimCategoryOther,
		Subject:  "Вопрос по сервису", Description: "Не приходит уведомление",
	})

	assert.NoError(t, err, "недоступность чата поддержки не блокирует создание претензии")
	assert.NotNil(t, claim)
}

func TestClaimService_CreateClaim_DropsIrrelevantAnswers(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()

	f.claims.On("Create", ctx, mock.AnythingOfType("*models.Claim")).Return(nil)
	f.chats.On("GetSupportChat", ctx, initiatorID).Return(nil, assert.AnError)

	claim, err := f.svc.CreateClaim(ctx, initiatorID, CreateClaimInput{
		Category:       models.ClaimCategoryUnfairReview,
		OrderRelevance: strPtr(models.OrderRelevanceStillWanted),
		RefundType:     strPtr(models.RefundTypeNone),
		Subject:        "Несправедливый отзыв",
		Description:    "Отзыв не относится к выполненной работе",
	})

	assert.NoError(t, err)
	assert.Nil(t, claim.OrderRelevance, "уточнения имеют смысл только для not_delivered")
	assert.Nil(t, claim.RefundType)
}

func TestClaimService_ListMyClaims_ClampsLimit(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()
	initiatorID := uuid.New()

	f.claims.On("ListByInitiator", ctx, initiatorID, 50, 0).Return([]models.Claim{}, nil)

	_, err := f.svc.ListMyClaims(ctx, initiatorID, 1000, -5)
	assert.NoError(t, err)
	f.claims.AssertExpectations(t)
}
