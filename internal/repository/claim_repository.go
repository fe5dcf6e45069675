package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository/common"
)

// ErrClaimNotFound возвращается, когда претензия не найдена.
var ErrClaimNotFound = errors.New("claim not found")

// ClaimRepository отвечает за претензии. Претензии неизменяемы после создания.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository создаёт новый экземпляр.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create сохраняет претензию вместе с вложениями в одной транзакции.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO claims (initiator_id, order_id, category, order_relevance, refund_type, subject, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			query,
			claim.InitiatorID,
			claim.OrderID,
			claim.Category,
			claim.OrderRelevance,
			claim.RefundType,
			claim.Subject,
			claim.Description,
		).Scan(&claim.ID, &claim.CreatedAt); err != nil {
			return fmt.Errorf("claim repository: insert claim %w", err)
		}

		for _, mediaID := range claim.AttachmentIDs {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO claim_attachments (claim_id, media_id) VALUES ($1, $2)`,
				claim.ID, mediaID,
			); err != nil {
				return fmt.Errorf("claim repository: insert attachment %w", err)
			}
		}

		return nil
	})
}

// GetByID возвращает претензию с её вложениями.
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	claim, err := common.GetByID[models.Claim](ctx, r.db, "claims", id, ErrClaimNotFound)
	if err != nil {
		return nil, err
	}

	var attachments []uuid.UUID
	query := `SELECT media_id FROM claim_attachments WHERE claim_id = $1`
	if err := r.db.SelectContext(ctx, &attachments, query, id); err != nil {
		return nil, fmt.Errorf("claim repository: list attachments %w", err)
	}
	claim.AttachmentIDs = attachments

	return claim, nil
}

// ListByInitiator возвращает претензии пользователя.
func (r *ClaimRepository) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, limit, offset int) ([]models.Claim, error) {
	var claims []models.Claim
	query := `
		SELECT * FROM claims
		WHERE initiator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &claims, query, initiatorID, limit, offset); err != nil {
		return nil, fmt.Errorf("claim repository: list by initiator %w", err)
	}
	return claims, nil
}
