package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// Ошибки уровня репозитория.
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

// ChatRepository отвечает за чаты, сообщения и привязку заказов к чатам.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository создаёт новый экземпляр.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat сохраняет новый чат.
func (r *ChatRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	query := `
		INSERT INTO chats (client_id, expert_id, is_support, context_title)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		chat.ClientID,
		chat.ExpertID,
		chat.IsSupport,
		chat.ContextTitle,
	).Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return fmt.Errorf("chat repository: create chat %w", err)
	}
	return nil
}

// GetChatByID возвращает чат вместе со списком привязанных заказов.
func (r *ChatRepository) GetChatByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	query := `
		SELECT id, client_id, expert_id, is_support, context_title, created_at
		FROM chats
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &chat, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("chat repository: get chat by id %w", err)
	}

	orderIDs, err := r.ListChatOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.OrderIDs = orderIDs

	return &chat, nil
}

// GetChatByParticipants ищет обычный (не поддержка) чат между двумя
// пользователями независимо от порядка.
func (r *ChatRepository) GetChatByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	query := `
		SELECT id, client_id, expert_id, is_support, context_title, created_at
		FROM chats
		WHERE is_support = FALSE
		  AND ((client_id = $1 AND expert_id = $2) OR (client_id = $2 AND expert_id = $1))
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &chat, query, a, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("chat repository: get chat by participants %w", err)
	}

	orderIDs, err := r.ListChatOrders(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	chat.OrderIDs = orderIDs

	return &chat, nil
}

// GetSupportChat ищет чат пользователя со службой поддержки.
func (r *ChatRepository) GetSupportChat(ctx context.Context, userID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	query := `
		SELECT id, client_id, expert_id, is_support, context_title, created_at
		FROM chats
		WHERE is_support = TRUE AND client_id = $1
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &chat, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("chat repository: get support chat %w", err)
	}
	return &chat, nil
}

// ListMyChats возвращает чаты пользователя, упорядоченные по времени создания.
func (r *ChatRepository) ListMyChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	query := `
		SELECT id, client_id, expert_id, is_support, context_title, created_at
		FROM chats
		WHERE client_id = $1 OR expert_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, fmt.Errorf("chat repository: list my chats %w", err)
	}
	return chats, nil
}

// ListChatOrders возвращает упорядоченный список заказов чата.
func (r *ChatRepository) ListChatOrders(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT order_id FROM chat_orders WHERE chat_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &ids, query, chatID); err != nil {
		return nil, fmt.Errorf("chat repository: list chat orders %w", err)
	}
	return ids, nil
}

// GetChatForOrder возвращает чат, к которому заказ был привязан последним.
func (r *ChatRepository) GetChatForOrder(ctx context.Context, orderID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	query := `
		SELECT c.id, c.client_id, c.expert_id, c.is_support, c.context_title, c.created_at
		FROM chats c
		JOIN chat_orders co ON co.chat_id = c.id
		WHERE co.order_id = $1
		ORDER BY co.created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &chat, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("chat repository: get chat for order %w", err)
	}
	return &chat, nil
}

// HasActiveOrder сообщает, есть ли у чата привязанный заказ в нетерминальном статусе.
func (r *ChatRepository) HasActiveOrder(ctx context.Context, chatID uuid.UUID) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM chat_orders co
		JOIN orders o ON o.id = co.order_id
		WHERE co.chat_id = $1 AND o.status NOT IN ($2, $3)
	`
	if err := r.db.GetContext(ctx, &count, query, chatID, models.OrderStatusCompleted, models.OrderStatusCancelled); err != nil {
		return false, fmt.Errorf("chat repository: has active order %w", err)
	}
	return count > 0, nil
}

// DeleteChat удаляет чат со всеми сообщениями.
func (r *ChatRepository) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("chat repository: delete chat %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("chat repository: delete chat rows affected %w", err)
	}
	if affected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// AddMessage сохраняет сообщение вместе с типизированной полезной нагрузкой
// в одной транзакции.
func (r *ChatRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO messages (chat_id, sender_id, type, content, media_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			query,
			msg.ChatID,
			msg.SenderID,
			msg.Type,
			msg.Content,
			msg.MediaID,
		).Scan(&msg.ID, &msg.CreatedAt); err != nil {
			return fmt.Errorf("chat repository: insert message %w", err)
		}

		switch msg.Type {
		case models.MessageTypeOffer:
			if msg.Offer == nil {
				return fmt.Errorf("chat repository: сообщение типа offer без полезной нагрузки")
			}
			msg.Offer.MessageID = msg.ID
			msg.Offer.Status = models.OfferStatusNew
			offerQuery := `
				INSERT INTO offer_data (message_id, work_type, subject, description, cost, deadline_at, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at
			`
			if err := tx.QueryRowxContext(
				ctx,
				offerQuery,
				msg.Offer.MessageID,
				msg.Offer.WorkType,
				msg.Offer.Subject,
				msg.Offer.Description,
				msg.Offer.Cost,
				msg.Offer.DeadlineAt,
				msg.Offer.Status,
			).Scan(&msg.Offer.CreatedAt); err != nil {
				return fmt.Errorf("chat repository: insert offer data %w", err)
			}
		case models.MessageTypeWorkOffer:
			if msg.WorkOffer == nil {
				return fmt.Errorf("chat repository: сообщение типа work_offer без полезной нагрузки")
			}
			msg.WorkOffer.MessageID = msg.ID
			msg.WorkOffer.Status = models.OfferStatusNew
			msg.WorkOffer.DeliveryStatus = models.DeliveryStatusPending
			workQuery := `
				INSERT INTO work_offer_data (message_id, title, description, cost, work_id, status, delivery_status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at
			`
			if err := tx.QueryRowxContext(
				ctx,
				workQuery,
				msg.WorkOffer.MessageID,
				msg.WorkOffer.Title,
				msg.WorkOffer.Description,
				msg.WorkOffer.Cost,
				msg.WorkOffer.WorkID,
				msg.WorkOffer.Status,
				msg.WorkOffer.DeliveryStatus,
			).Scan(&msg.WorkOffer.CreatedAt); err != nil {
				return fmt.Errorf("chat repository: insert work offer data %w", err)
			}
		}

		return nil
	})
}

// GetMessageByID возвращает сообщение с его полезной нагрузкой.
func (r *ChatRepository) GetMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	query := `
		SELECT id, chat_id, sender_id, type, content, media_id, is_read, created_at
		FROM messages
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("chat repository: get message by id %w", err)
	}

	if err := r.attachPayloads(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}

	return &msg, nil
}

// ListMessages возвращает сообщения чата с пагинацией, старые первыми.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT id, chat_id, sender_id, type, content, media_id, is_read, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, chatID, limit, offset); err != nil {
		return nil, fmt.Errorf("chat repository: list messages %w", err)
	}

	ptrs := make([]*models.Message, len(messages))
	for i := range messages {
		ptrs[i] = &messages[i]
	}
	if err := r.attachPayloads(ctx, ptrs); err != nil {
		return nil, err
	}

	return messages, nil
}

// GetLastMessage возвращает последнее сообщение чата.
func (r *ChatRepository) GetLastMessage(ctx context.Context, chatID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	query := `
		SELECT id, chat_id, sender_id, type, content, media_id, is_read, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &msg, query, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("chat repository: get last message %w", err)
	}
	return &msg, nil
}

// MarkMessagesRead помечает прочитанными все входящие сообщения чата.
func (r *ChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID uuid.UUID) error {
	query := `UPDATE messages SET is_read = TRUE WHERE chat_id = $1 AND sender_id <> $2 AND is_read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, chatID, readerID); err != nil {
		return fmt.Errorf("chat repository: mark messages read %w", err)
	}
	return nil
}

// attachPayloads подгружает полезные нагрузки для сообщений типов offer и
// work_offer двумя батч-запросами.
func (r *ChatRepository) attachPayloads(ctx context.Context, messages []*models.Message) error {
	offerIDs := make([]uuid.UUID, 0)
	workIDs := make([]uuid.UUID, 0)
	byID := make(map[uuid.UUID]*models.Message, len(messages))

	for _, m := range messages {
		byID[m.ID] = m
		switch m.Type {
		case models.MessageTypeOffer:
			offerIDs = append(offerIDs, m.ID)
		case models.MessageTypeWorkOffer:
			workIDs = append(workIDs, m.ID)
		}
	}

	if len(offerIDs) > 0 {
		var offers []models.OfferData
		query := `SELECT * FROM offer_data WHERE message_id = ANY($1)`
		if err := r.db.SelectContext(ctx, &offers, query, pq.Array(offerIDs)); err != nil {
			return fmt.Errorf("chat repository: load offer payloads %w", err)
		}
		for i := range offers {
			if m, ok := byID[offers[i].MessageID]; ok {
				m.Offer = &offers[i]
			}
		}
	}

	if len(workIDs) > 0 {
		var workOffers []models.WorkOfferData
		query := `SELECT * FROM work_offer_data WHERE message_id = ANY($1)`
		if err := r.db.SelectContext(ctx, &workOffers, query, pq.Array(workIDs)); err != nil {
			return fmt.Errorf("chat repository: load work offer payloads %w", err)
		}
		for i := range workOffers {
			if m, ok := byID[workOffers[i].MessageID]; ok {
				m.WorkOffer = &workOffers[i]
			}
		}
	}

	return nil
}
