package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// Ошибки уровня репозитория.
var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrWorkOfferNotFound = errors.New("work offer not found")
)

// OfferRepository отвечает за полезные нагрузки коммерческих сообщений:
// индивидуальные предложения и предложения готовых работ. Все смены статуса
// выполняются условным UPDATE: проверка предусловия и запись нового состояния
// атомарны на уровне строки, проигравший гонку получает
// common.ErrStatusConflict.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository создаёт новый экземпляр.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// GetOfferByMessageID возвращает индивидуальное предложение.
func (r *OfferRepository) GetOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.OfferData, error) {
	var offer models.OfferData
	if err := r.db.GetContext(ctx, &offer, `SELECT * FROM offer_data WHERE message_id = $1`, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("offer repository: get offer %w", err)
	}
	return &offer, nil
}

// GetWorkOfferByMessageID возвращает предложение готовой работы.
func (r *OfferRepository) GetWorkOfferByMessageID(ctx context.Context, messageID uuid.UUID) (*models.WorkOfferData, error) {
	var offer models.WorkOfferData
	if err := r.db.GetContext(ctx, &offer, `SELECT * FROM work_offer_data WHERE message_id = $1`, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkOfferNotFound
		}
		return nil, fmt.Errorf("offer repository: get work offer %w", err)
	}
	return &offer, nil
}

// AcceptOffer принимает предложение и материализует заказ в одной транзакции:
// условный перевод статуса new -> accepted (с проверкой окна действия в том же
// предикате), создание заказа по условиям предложения, запись order_id обратно
// в предложение и дозапись заказа в историю чата. Никаких частичных эффектов:
// проигравший гонку или опоздавший получает common.ErrStatusConflict, заказ
// при этом не создаётся.
func (r *OfferRepository) AcceptOffer(ctx context.Context, messageID, chatID uuid.UUID, order *models.Order, notBefore time.Time) (*models.OfferData, error) {
	var offer models.OfferData

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		acceptQuery := `
			UPDATE offer_data
			SET status = $2
			WHERE message_id = $1 AND status = $3 AND created_at > $4
			RETURNING *
		`
		if err := tx.GetContext(ctx, &offer, acceptQuery, messageID, models.OfferStatusAccepted, models.OfferStatusNew, notBefore); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return offerConflictOrMissing(ctx, tx, messageID)
			}
			return fmt.Errorf("offer repository: accept offer %w", err)
		}

		orderQuery := `
			INSERT INTO orders (client_id, expert_id, title, description, subject, work_type, budget, status, deadline_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			orderQuery,
			order.ClientID,
			order.ExpertID,
			order.Title,
			order.Description,
			order.Subject,
			order.WorkType,
			order.Budget,
			order.Status,
			order.DeadlineAt,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return fmt.Errorf("offer repository: create order %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE offer_data SET order_id = $2 WHERE message_id = $1`, messageID, order.ID); err != nil {
			return fmt.Errorf("offer repository: link order %w", err)
		}
		offer.OrderID = &order.ID

		linkQuery := `INSERT INTO chat_orders (chat_id, order_id) VALUES ($1, $2) ON CONFLICT (chat_id, order_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, linkQuery, chatID, order.ID); err != nil {
			return fmt.Errorf("offer repository: append chat order %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &offer, nil
}

// RejectOffer отклоняет предложение при тех же предусловиях, что и принятие.
func (r *OfferRepository) RejectOffer(ctx context.Context, messageID uuid.UUID, notBefore time.Time) (*models.OfferData, error) {
	var offer models.OfferData
	query := `
		UPDATE offer_data
		SET status = $2
		WHERE message_id = $1 AND status = $3 AND created_at > $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &offer, query, messageID, models.OfferStatusRejected, models.OfferStatusNew, notBefore)
	if err == nil {
		return &offer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("offer repository: reject offer %w", err)
	}
	return nil, offerConflictOrMissing(ctx, r.db, messageID)
}

// UpdateWorkOfferStatusIfNew переводит предложение готовой работы из new в
// accepted или rejected. Сдача после принятия начинается со статуса pending.
func (r *OfferRepository) UpdateWorkOfferStatusIfNew(ctx context.Context, messageID uuid.UUID, status string) (*models.WorkOfferData, error) {
	var offer models.WorkOfferData
	query := `
		UPDATE work_offer_data
		SET status = $2
		WHERE message_id = $1 AND status = $3
		RETURNING *
	`
	err := r.db.GetContext(ctx, &offer, query, messageID, status, models.OfferStatusNew)
	if err == nil {
		return &offer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("offer repository: update work offer status %w", err)
	}
	return nil, workOfferConflictOrMissing(ctx, r.db, messageID)
}

// UpdateDeliveryStatusIf переводит сдачу готовой работы из состояния from в to.
// Переходы только вперёд: pending -> awaiting_upload -> delivered -> accepted | rejected.
func (r *OfferRepository) UpdateDeliveryStatusIf(ctx context.Context, messageID uuid.UUID, from, to string) (*models.WorkOfferData, error) {
	var offer models.WorkOfferData
	query := `
		UPDATE work_offer_data
		SET delivery_status = $2
		WHERE message_id = $1 AND status = $3 AND delivery_status = $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &offer, query, messageID, to, models.OfferStatusAccepted, from)
	if err == nil {
		return &offer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("offer repository: update delivery status %w", err)
	}
	return nil, workOfferConflictOrMissing(ctx, r.db, messageID)
}

// DeliverWorkOffer фиксирует сдачу работы в одной транзакции: условный переход
// awaiting_upload -> delivered, вставка файлового сообщения в чат и запись
// delivered_message_id. fileMsg должен ссылаться на уже сохранённый медиафайл.
func (r *OfferRepository) DeliverWorkOffer(ctx context.Context, messageID uuid.UUID, fileMsg *models.Message) (*models.WorkOfferData, error) {
	var offer models.WorkOfferData

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		deliverQuery := `
			UPDATE work_offer_data
			SET delivery_status = $2
			WHERE message_id = $1 AND status = $3 AND delivery_status = $4
			RETURNING *
		`
		if err := tx.GetContext(ctx, &offer, deliverQuery, messageID, models.DeliveryStatusDelivered,
			models.OfferStatusAccepted, models.DeliveryStatusAwaitingUpload); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return workOfferConflictOrMissing(ctx, tx, messageID)
			}
			return fmt.Errorf("offer repository: deliver work offer %w", err)
		}

		msgQuery := `
			INSERT INTO messages (chat_id, sender_id, type, content, media_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			msgQuery,
			fileMsg.ChatID,
			fileMsg.SenderID,
			fileMsg.Type,
			fileMsg.Content,
			fileMsg.MediaID,
		).Scan(&fileMsg.ID, &fileMsg.CreatedAt); err != nil {
			return fmt.Errorf("offer repository: insert delivery message %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE work_offer_data SET delivered_message_id = $2 WHERE message_id = $1`, messageID, fileMsg.ID); err != nil {
			return fmt.Errorf("offer repository: link delivery message %w", err)
		}
		offer.DeliveredMessageID = &fileMsg.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &offer, nil
}

// queryer объединяет *sqlx.DB и *sqlx.Tx для вспомогательных проверок.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// offerConflictOrMissing различает "нет такого предложения" и "предусловие не
// выполнено" после условного обновления, не затронувшего строк.
func offerConflictOrMissing(ctx context.Context, q queryer, messageID uuid.UUID) error {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM offer_data WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("offer repository: check offer exists %w", err)
	}
	if count == 0 {
		return ErrOfferNotFound
	}
	return common.ErrStatusConflict
}

func workOfferConflictOrMissing(ctx context.Context, q queryer, messageID uuid.UUID) error {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM work_offer_data WHERE message_id = $1`, messageID); err != nil {
		return fmt.Errorf("offer repository: check work offer exists %w", err)
	}
	if count == 0 {
		return ErrWorkOfferNotFound
	}
	return common.ErrStatusConflict
}
