package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// ErrOrderNotFound возвращается, когда заказ не найден.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository отвечает за заказы. Переходы статусов выполняются условными
// UPDATE, чтобы проверка предусловия и запись были одним атомарным шагом на
// строке заказа.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет заказ.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (client_id, expert_id, title, description, subject, work_type, budget, status, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
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
		return fmt.Errorf("order repository: create %w", err)
	}
	return nil
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return common.GetByID[models.Order](ctx, r.db, "orders", id, ErrOrderNotFound)
}

// ListMyOrders возвращает заказы, где пользователь является одной из сторон.
func (r *OrderRepository) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	query := `
		SELECT * FROM orders
		WHERE client_id = $1 OR expert_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("order repository: list my orders %w", err)
	}
	return orders, nil
}

// UpdateStatusIf переводит заказ в статус to, если текущий статус входит в from.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to string, from ...string) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING *
	`
	err := r.db.GetContext(ctx, &order, query, id, to, pq.Array(from))
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order repository: update status %w", err)
	}
	return nil, r.conflictOrMissing(ctx, id)
}

// SubmitIf переводит заказ на проверку. Дедлайн — жёсткое предусловие
// перехода, он проверяется в том же предикате, что и статус.
func (r *OrderRepository) SubmitIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		  AND status = ANY($3)
		  AND deadline_at >= $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &order, query, id, models.OrderStatusReview,
		pq.Array([]string{models.OrderStatusInProgress, models.OrderStatusRevision}), now)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order repository: submit %w", err)
	}
	return nil, r.conflictOrMissing(ctx, id)
}

// CancelOverdueIf отменяет просроченный заказ: только из активных статусов и
// только когда дедлайн уже прошёл.
func (r *OrderRepository) CancelOverdueIf(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		  AND status = ANY($3)
		  AND deadline_at < $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &order, query, id, models.OrderStatusCancelled,
		pq.Array([]string{models.OrderStatusInProgress, models.OrderStatusRevision}), now)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order repository: cancel overdue %w", err)
	}
	return nil, r.conflictOrMissing(ctx, id)
}

// ExtendDeadlineIf продлевает дедлайн просроченного заказа: только из
// активных статусов и только когда текущий дедлайн уже прошёл.
func (r *OrderRepository) ExtendDeadlineIf(ctx context.Context, id uuid.UUID, newDeadline, now time.Time) (*models.Order, error) {
	var order models.Order
	query := `
		UPDATE orders
		SET deadline_at = $2, updated_at = NOW()
		WHERE id = $1
		  AND status = ANY($3)
		  AND deadline_at < $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &order, query, id, newDeadline,
		pq.Array([]string{models.OrderStatusInProgress, models.OrderStatusRevision}), now)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order repository: extend deadline %w", err)
	}
	return nil, r.conflictOrMissing(ctx, id)
}

// conflictOrMissing различает отсутствие заказа и невыполненное предусловие.
func (r *OrderRepository) conflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("order repository: check order exists %w", err)
	}
	if count == 0 {
		return ErrOrderNotFound
	}
	return common.ErrStatusConflict
}
