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

// ErrMediaNotFound сигнализирует об отсутствии файла.
var ErrMediaNotFound = errors.New("media not found")

// MediaRepository работает с таблицей media_files.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository создаёт экземпляр.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет запись о файле.
func (r *MediaRepository) Create(ctx context.Context, media *models.MediaFile) error {
	query := `
		INSERT INTO media_files (user_id, file_path, file_name, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		media.UserID,
		media.FilePath,
		media.FileName,
		media.FileType,
		media.FileSize,
	).Scan(&media.ID, &media.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}
	return nil
}

// GetByID возвращает запись о файле.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return common.GetByID[models.MediaFile](ctx, r.db, "media_files", id, ErrMediaNotFound)
}

// CanAccess сообщает, доступен ли файл пользователю: либо файл загружен им
// самим, либо фигурирует в сообщении чата, участником которого он является.
func (r *MediaRepository) CanAccess(ctx context.Context, mediaID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM media_files m
		LEFT JOIN messages msg ON msg.media_id = m.id
		LEFT JOIN chats c ON c.id = msg.chat_id
		WHERE m.id = $1
		  AND (m.user_id = $2 OR c.client_id = $2 OR c.expert_id = $2)
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, mediaID, userID); err != nil {
		return false, fmt.Errorf("media repository: check access %w", err)
	}
	return count > 0, nil
}
