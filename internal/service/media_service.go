package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Argor01/OkoZnaniy-sub001/internal/models"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
)

// FileOpener читает содержимое файлов из внешнего хранилища.
type FileOpener interface {
	Open(ctx context.Context, relativePath string) (io.ReadCloser, error)
}

// MediaService сохраняет загружаемые файлы и отдаёт их содержимое.
type MediaService struct {
	media   MediaRepo
	storage FileStore
	opener  FileOpener
}

func NewMediaService(media MediaRepo, storage FileStore, opener FileOpener) *MediaService {
	return &MediaService{media: media, storage: storage, opener: opener}
}

// Upload сохраняет содержимое файла в хранилище и регистрирует метаданные.
// Тип содержимого определяется по сигнатуре файла, а не по расширению.
func (s *MediaService) Upload(ctx context.Context, userID uuid.UUID, fileName string, r io.Reader) (*models.MediaFile, error) {
	relPath, contentType, size, err := s.storage.Save(ctx, userID, fileName, r)
	if err != nil {
		return nil, fmt.Errorf("media service: сохранение файла: %w", err)
	}

	media := &models.MediaFile{
		UserID:   &userID,
		FilePath: relPath,
		FileName: fileName,
		FileType: contentType,
		FileSize: size,
	}
	if err := s.media.Create(ctx, media); err != nil {
		return nil, fmt.Errorf("media service: сохранение метаданных: %w", err)
	}
	return media, nil
}

// Get возвращает метаданные файла.
func (s *MediaService) Get(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	media, err := s.media.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return nil, apperror.ErrMediaNotFound
		}
		return nil, fmt.Errorf("media service: получение метаданных: %w", err)
	}
	return media, nil
}

// Download возвращает метаданные и поток содержимого файла. Файл доступен
// его владельцу и участникам чатов, в которые он был отправлен.
func (s *MediaService) Download(ctx context.Context, userID, id uuid.UUID) (*models.MediaFile, io.ReadCloser, error) {
	media, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.media.CanAccess(ctx, id, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("media service: проверка доступа: %w", err)
	}
	if !ok {
		return nil, nil, apperror.ErrForbidden
	}

	rc, err := s.opener.Open(ctx, media.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("media service: чтение файла: %w", err)
	}
	return media, rc, nil
}
