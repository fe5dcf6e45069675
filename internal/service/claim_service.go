package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
)

// ClaimRepo — хранилище претензий.
type ClaimRepo interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ListByInitiator(ctx context.Context, initiatorID uuid.UUID, limit, offset int) ([]models.Claim, error)
}

// CreateClaimInput — данные новой претензии.
type CreateClaimInput struct {
	OrderID        *uuid.UUID  `json:"order_id,omitempty"`
	Category       string      `json:"category"`
	OrderRelevance *string     `json:"order_relevance,omitempty"`
	RefundType     *string     `json:"refund_type,omitempty"`
	Subject        string      `json:"subject"`
	Description    string      `json:"description"`
	AttachmentIDs  []uuid.UUID `json:"attachment_ids,omitempty"`
}

// ClaimService принимает претензии участников. Каждая претензия после
// создания дублируется снимком в чат инициатора со службой поддержки: даже
// если внешняя система разбора недоступна, обращение не теряется.
type ClaimService struct {
	claims   ClaimRepo
	chats    ChatRepo
	orders   OrderRepo
	media    MediaRepo
	notifier Notifier

	supportUserID uuid.UUID
}

func NewClaimService(claims ClaimRepo, chats ChatRepo, orders OrderRepo, media MediaRepo, notifier Notifier, supportUserID uuid.UUID) *ClaimService {
	return &ClaimService{
		claims:        claims,
		chats:         chats,
		orders:        orders,
		media:         media,
		notifier:      notifier,
		supportUserID: supportUserID,
	}
}

// CreateClaim создаёт претензию и отправляет её снимок в чат поддержки.
// Для категории not_delivered обязательны уточнения: нужна ли ещё работа и
// какой возврат требуется. Претензия по заказу доступна только его сторонам.
func (s *ClaimService) CreateClaim(ctx context.Context, initiatorID uuid.UUID, input CreateClaimInput) (*models.Claim, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	if input.OrderID != nil {
		order, err := s.orders.GetByID(ctx, *input.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, apperror.ErrOrderNotFound
			}
			return nil, fmt.Errorf("claim service: получение заказа: %w", err)
		}
		if !order.IsParticipant(initiatorID) {
			return nil, apperror.Forbidden("претензию по заказу может подать только его сторона")
		}
	}

	// Вложениями служат только собственные загрузки инициатора.
	for _, attachmentID := range input.AttachmentIDs {
		media, err := s.media.GetByID(ctx, attachmentID)
		if err != nil {
			if errors.Is(err, repository.ErrMediaNotFound) {
				return nil, apperror.ErrMediaNotFound
			}
			return nil, fmt.Errorf("claim service: получение вложения: %w", err)
		}
		if media.UserID == nil || *media.UserID != initiatorID {
			return nil, apperror.ErrForbidden
		}
	}

	claim := &models.Claim{
		InitiatorID:    initiatorID,
		OrderID:        input.OrderID,
		Category:       input.Category,
		OrderRelevance: input.OrderRelevance,
		RefundType:     input.RefundType,
		Subject:        input.Subject,
		Description:    input.Description,
		AttachmentIDs:  input.AttachmentIDs,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("claim service: создание претензии: %w", err)
	}

	if err := s.mirrorToSupportChat(ctx, initiatorID, claim); err != nil {
		logger.WithComponent("claim").WithError(err).Warn("не удалось отправить претензию в чат поддержки")
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, s.supportUserID, "claim.created", claim); err != nil {
			logger.WithComponent("claim").WithError(err).Warn("не удалось уведомить поддержку")
		}
	}

	return claim, nil
}

// ListMyClaims возвращает претензии инициатора, новые первыми.
func (s *ClaimService) ListMyClaims(ctx context.Context, initiatorID uuid.UUID, limit, offset int) ([]models.Claim, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	claims, err := s.claims.ListByInitiator(ctx, initiatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("claim service: список претензий: %w", err)
	}
	return claims, nil
}

func (s *ClaimService) validate(input *CreateClaimInput) error {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	if input.Subject == "" {
		return apperror.Validation("тема претензии обязательна")
	}
	if input.Description == "" {
		return apperror.Validation("описание претензии обязательно")
	}
	if _, ok := models.ValidClaimCategories[input.Category]; !ok {
		return apperror.Validation("неизвестная категория претензии")
	}

	if input.Category == models.ClaimCategoryNotDelivered {
		if input.OrderID == nil {
			return apperror.Validation("для претензии о несданной работе укажите заказ")
		}
		if input.OrderRelevance == nil {
			return apperror.Validation("укажите, нужна ли ещё работа")
		}
		if _, ok := models.ValidOrderRelevances[*input.OrderRelevance]; !ok {
			return apperror.Validation("неизвестный ответ об актуальности заказа")
		}
		if input.RefundType == nil {
			return apperror.Validation("укажите требуемый возврат")
		}
		if _, ok := models.ValidRefundTypes[*input.RefundType]; !ok {
			return apperror.Validation("неизвестный вариант возврата")
		}
	} else {
		input.OrderRelevance = nil
		input.RefundType = nil
	}

	return nil
}

// mirrorToSupportChat находит или создаёт чат инициатора с поддержкой и
// отправляет туда текстовый снимок претензии.
func (s *ClaimService) mirrorToSupportChat(ctx context.Context, initiatorID uuid.UUID, claim *models.Claim) error {
	chat, err := s.chats.GetSupportChat(ctx, initiatorID)
	if errors.Is(err, repository.ErrChatNotFound) {
		title := "Служба поддержки"
		chat = &models.Chat{
			ClientID:     initiatorID,
			ExpertID:     s.supportUserID,
			IsSupport:    true,
			ContextTitle: &title,
		}
		if createErr := s.chats.CreateChat(ctx, chat); createErr != nil {
			return fmt.Errorf("создание чата поддержки: %w", createErr)
		}
	} else if err != nil {
		return fmt.Errorf("поиск чата поддержки: %w", err)
	}

	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: initiatorID,
		Type:     models.MessageTypeText,
		Content:  formatClaimSnapshot(claim),
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return fmt.Errorf("отправка снимка претензии: %w", err)
	}
	return nil
}

func formatClaimSnapshot(claim *models.Claim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Претензия №%s\n", claim.ID)
	fmt.Fprintf(&b, "Категория: %s\n", claimCategoryTitle(claim.Category))
	if claim.OrderID != nil {
		fmt.Fprintf(&b, "Заказ: %s\n", claim.OrderID)
	}
	if claim.OrderRelevance != nil {
		fmt.Fprintf(&b, "Работа ещё нужна: %s\n", orderRelevanceTitle(*claim.OrderRelevance))
	}
	if claim.RefundType != nil {
		fmt.Fprintf(&b, "Требуемый возврат: %s\n", refundTypeTitle(*claim.RefundType))
	}
	fmt.Fprintf(&b, "Тема: %s\n", claim.Subject)
	fmt.Fprintf(&b, "Описание: %s", claim.Description)
	if len(claim.AttachmentIDs) > 0 {
		fmt.Fprintf(&b, "\nВложений: %d", len(claim.AttachmentIDs))
	}
	return b.String()
}

func claimCategoryTitle(category string) string {
	switch category {
	case models.ClaimCategoryNotDelivered:
		return "работа не сдана"
	case models.ClaimCategoryPoorQuality:
		return "низкое качество работы"
	case models.ClaimCategoryUnpaid:
		return "работа не оплачена"
	case models.ClaimCategoryUnfairReview:
		return "несправедливый отзыв"
	case models.ClaimCategoryListingIssue:
		return "проблема с размещением"
	default:
		return "другое"
	}
}

func orderRelevanceTitle(relevance string) string {
	if relevance == models.OrderRelevanceStillWanted {
		return "да"
	}
	return "нет"
}

func refundTypeTitle(refund string) string {
	switch refund {
	case models.RefundTypePrepayment:
		return "возврат предоплаты"
	case models.RefundTypePrepaymentPenalty:
		return "возврат предоплаты с неустойкой"
	default:
		return "возврат не требуется"
	}
}
